package main

import (
	"fmt"
	"log"
	"time"

	"github.com/xelth-com/eckscalego/internal/config"
	"github.com/xelth-com/eckscalego/internal/database"
	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/utils"
)

func main() {
	fmt.Println("🌱 eckScale Demo Data Seeder")
	fmt.Println("=" + string(make([]rune, 60)))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println()

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Sequence{},
		&models.WeighingScale{},
		&models.TruckFleet{},
		&models.ResPartner{},
		&models.ProductProduct{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
		&models.SaleOrder{},
		&models.SaleOrderLine{},
		&models.StockLocation{},
		&models.StockPicking{},
		&models.StockMove{},
		&models.StockMoveLine{},
		&models.DocumentNote{},
		&models.TruckWeighing{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	// Check if data already exists
	var truckCount int64
	db.Model(&models.TruckFleet{}).Count(&truckCount)
	if truckCount > 0 {
		fmt.Printf("⚠️  Database already has %d trucks. Clear it first? (y/N): ", truckCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		// Clear existing data
		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE truck_weighing CASCADE")
		db.Exec("TRUNCATE TABLE stock_picking_note CASCADE")
		db.Exec("TRUNCATE TABLE stock_move_line CASCADE")
		db.Exec("TRUNCATE TABLE stock_move CASCADE")
		db.Exec("TRUNCATE TABLE stock_picking CASCADE")
		db.Exec("TRUNCATE TABLE sale_order_line CASCADE")
		db.Exec("TRUNCATE TABLE sale_order CASCADE")
		db.Exec("TRUNCATE TABLE purchase_order_line CASCADE")
		db.Exec("TRUNCATE TABLE purchase_order CASCADE")
		db.Exec("TRUNCATE TABLE product_product CASCADE")
		db.Exec("TRUNCATE TABLE res_partner CASCADE")
		db.Exec("TRUNCATE TABLE truck_fleet CASCADE")
		db.Exec("TRUNCATE TABLE weighing_scale CASCADE")
		db.Exec("TRUNCATE TABLE stock_location CASCADE")
		db.Exec("TRUNCATE TABLE ir_sequence CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println()
	fmt.Println("📦 Creating demo data...")
	fmt.Println()

	now := time.Now()

	// 1. Create Locations
	fmt.Println("📍 Creating locations...")
	locations := []models.StockLocation{
		{ID: 1, Name: "Vendors", CompleteName: "Partners/Vendors", Usage: "supplier", Active: true},
		{ID: 2, Name: "Stock", CompleteName: "WH/Stock", Usage: "internal", Active: true},
		{ID: 3, Name: "Customers", CompleteName: "Partners/Customers", Usage: "customer", Active: true},
	}
	for _, loc := range locations {
		if err := db.Create(&loc).Error; err != nil {
			log.Printf("⚠️  Failed to create location %s: %v", loc.Name, err)
		} else {
			fmt.Printf("   ✓ Created location: %s\n", loc.CompleteName)
		}
	}
	fmt.Printf("✅ Created %d locations\n\n", len(locations))

	// 2. Create Partners
	fmt.Println("🤝 Creating partners...")
	partners := []models.ResPartner{
		{ID: 10, Name: "Agrar GmbH", City: "Hannover", IsCompany: true, CompanyType: "company", LastSyncedAt: now},
		{ID: 11, Name: "Mühle Nord KG", City: "Bremen", IsCompany: true, CompanyType: "company", LastSyncedAt: now},
		{ID: 12, Name: "Bio Futtermittel AG", City: "Oldenburg", IsCompany: true, CompanyType: "company", LastSyncedAt: now},
	}
	for _, p := range partners {
		if err := db.Create(&p).Error; err != nil {
			log.Printf("⚠️  Failed to create partner %s: %v", p.Name, err)
		} else {
			fmt.Printf("   ✓ Created partner: %s\n", p.Name)
		}
	}
	fmt.Printf("✅ Created %d partners\n\n", len(partners))

	// 3. Create Products
	fmt.Println("📦 Creating products...")
	products := []models.ProductProduct{
		{ID: 1, Name: "Wheat Grain", DefaultCode: "GRAIN-WHEAT", Active: true, Type: "product", IsWeighable: true, UomName: "kg", LastSyncedAt: now},
		{ID: 2, Name: "Rapeseed", DefaultCode: "GRAIN-RAPE", Active: true, Type: "product", IsWeighable: true, UomName: "kg", LastSyncedAt: now},
		{ID: 3, Name: "Barley", DefaultCode: "GRAIN-BARLEY", Active: true, Type: "product", IsWeighable: true, UomName: "kg", LastSyncedAt: now},
		{ID: 4, Name: "Pallet Shrink Wrap", DefaultCode: "PACK-WRAP", Active: true, Type: "consu", IsWeighable: false, UomName: "Units", LastSyncedAt: now},
	}
	for _, p := range products {
		if err := db.Create(&p).Error; err != nil {
			log.Printf("⚠️  Failed to create product %s: %v", p.Name, err)
		} else {
			fmt.Printf("   ✓ Created product: [%s] %s\n", p.DefaultCode, p.Name)
		}
	}
	fmt.Printf("✅ Created %d products\n\n", len(products))

	// 4. Create Scales
	fmt.Println("⚖️  Creating scales...")
	scales := []models.WeighingScale{
		{ID: 1, Name: "Main Bridge", Active: true, IPAddress: "127.0.0.1", Port: 5001, TimeoutSeconds: 2, IsEnabled: true, ConnectionStatus: models.ScaleDisconnected},
		{ID: 2, Name: "Silo Bridge", Active: true, IPAddress: "127.0.0.1", Port: 5002, TimeoutSeconds: 2, IsEnabled: false, ConnectionStatus: models.ScaleDisconnected, Notes: "Under maintenance"},
	}
	for _, s := range scales {
		if err := db.Create(&s).Error; err != nil {
			log.Printf("⚠️  Failed to create scale %s: %v", s.Name, err)
		} else {
			fmt.Printf("   ✓ Created scale: %s (%s:%d)\n", s.Name, s.IPAddress, s.Port)
		}
	}
	fmt.Printf("✅ Created %d scales\n\n", len(scales))

	// 5. Create Trucks
	fmt.Println("🚛 Creating trucks...")
	trucks := []models.TruckFleet{
		{ID: 1, PlateNumber: "B-TR 1234", DriverName: "Hans Weber", DriverPhone: "+49 170 1111111", Manufacturer: "MAN", Model: "TGX", Year: 2021, TrailerCount: 1, MaxWeightPerTrailer: 24000, TareWeight: 14200, PartnerID: int64Ptr(10), Active: true, Status: models.TruckAvailable},
		{ID: 2, PlateNumber: "HB-MN 552", DriverName: "Petra Krause", DriverPhone: "+49 170 2222222", Manufacturer: "Scania", Model: "R450", Year: 2019, TrailerCount: 2, MaxWeightPerTrailer: 18000, TareWeight: 16900, PartnerID: int64Ptr(11), Active: true, Status: models.TruckAvailable},
		{ID: 3, PlateNumber: "OL-BF 77", DriverName: "Jens Tammen", Manufacturer: "Volvo", Model: "FH16", Year: 2023, TrailerCount: 1, MaxWeightPerTrailer: 25000, TareWeight: 13800, PartnerID: int64Ptr(12), Active: true, Status: models.TruckAvailable},
	}
	for _, t := range trucks {
		if err := db.Create(&t).Error; err != nil {
			log.Printf("⚠️  Failed to create truck %s: %v", t.PlateNumber, err)
		} else {
			fmt.Printf("   ✓ Created truck: %s (%s)\n", t.PlateNumber, t.DriverName)
		}
	}
	fmt.Printf("✅ Created %d trucks\n\n", len(trucks))

	// 6. Create Purchase Orders (incoming material)
	fmt.Println("📋 Creating purchase orders...")
	purchases := []models.PurchaseOrder{
		{ID: 100, Name: "PO00042", PartnerID: int64Ptr(10), State: "purchase", LastSyncedAt: now},
		{ID: 101, Name: "PO00043", PartnerID: int64Ptr(12), State: "purchase", LastSyncedAt: now},
	}
	purchaseLines := []models.PurchaseOrderLine{
		{ID: 1000, OrderID: 100, ProductID: 1, ProductQty: 18000, Sequence: 10},
		{ID: 1001, OrderID: 100, ProductID: 4, ProductQty: 20, Sequence: 20},
		{ID: 1002, OrderID: 101, ProductID: 3, ProductQty: 22000, Sequence: 10},
	}
	for _, po := range purchases {
		if err := db.Create(&po).Error; err != nil {
			log.Printf("⚠️  Failed to create purchase order %s: %v", po.Name, err)
		} else {
			fmt.Printf("   ✓ Created purchase order: %s\n", po.Name)
		}
	}
	for _, l := range purchaseLines {
		if err := db.Create(&l).Error; err != nil {
			log.Printf("⚠️  Failed to create purchase line: %v", err)
		}
	}
	fmt.Printf("✅ Created %d purchase orders (%d lines)\n\n", len(purchases), len(purchaseLines))

	// 7. Create Sale Orders (outgoing material)
	fmt.Println("📋 Creating sale orders...")
	sales := []models.SaleOrder{
		{ID: 200, Name: "SO00091", PartnerID: int64Ptr(11), State: "sale", LastSyncedAt: now},
	}
	saleLines := []models.SaleOrderLine{
		{ID: 2000, OrderID: 200, ProductID: 2, ProductUomQty: 9500, Sequence: 10},
	}
	for _, so := range sales {
		if err := db.Create(&so).Error; err != nil {
			log.Printf("⚠️  Failed to create sale order %s: %v", so.Name, err)
		} else {
			fmt.Printf("   ✓ Created sale order: %s\n", so.Name)
		}
	}
	for _, l := range saleLines {
		if err := db.Create(&l).Error; err != nil {
			log.Printf("⚠️  Failed to create sale line: %v", err)
		}
	}
	fmt.Printf("✅ Created %d sale orders (%d lines)\n\n", len(sales), len(saleLines))

	// 8. Create Operator Account
	fmt.Println("👤 Creating operator account...")
	hash, err := utils.HashPassword("admin123")
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	admin := models.UserAuth{
		Username:       "admin",
		Password:       hash,
		Name:           "Yard Operator",
		Role:           "admin",
		IsActive:       true,
		DefaultScaleID: int64Ptr(1),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("⚠️  Failed to create operator: %v", err)
	} else {
		fmt.Println("   ✓ Created operator: admin / admin123 (default scale: Main Bridge)")
	}
	fmt.Println()

	// Summary
	fmt.Println("=" + string(make([]rune, 60)))
	fmt.Println("🎉 Demo data created successfully!")
	fmt.Println()
	fmt.Println("📊 Summary:")
	fmt.Printf("   • %d locations (supplier / internal / customer)\n", len(locations))
	fmt.Printf("   • %d partners\n", len(partners))
	fmt.Printf("   • %d products (%d weighable)\n", len(products), 3)
	fmt.Printf("   • %d scales\n", len(scales))
	fmt.Printf("   • %d trucks\n", len(trucks))
	fmt.Printf("   • %d purchase orders, %d sale orders\n", len(purchases), len(sales))
	fmt.Println()
	fmt.Println("🚀 Start a simulated scale device:")
	fmt.Println("   go run ./cmd/scalesim -port 5001")
	fmt.Println()
	fmt.Println("🌐 Then start the server:")
	fmt.Println("   go run ./cmd/api/main.go")
	fmt.Printf("   Then visit: http://localhost:%s\n", cfg.Port)
	fmt.Println("=" + string(make([]rune, 60)))
}

func int64Ptr(i int64) *int64 {
	return &i
}
