package erp

import (
	"encoding/json"
	"log"
	"time"

	"github.com/xelth-com/eckscalego/internal/config"
	"github.com/xelth-com/eckscalego/internal/database"
	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// SyncService mirrors partners, weighable products and open orders from the
// ERP into the local database on a fixed interval.
type SyncService struct {
	client *Client
	db     *database.DB
	cfg    config.ERPConfig
	stop   chan struct{}
}

// NewSyncService creates a new synchronization service
func NewSyncService(db *database.DB, cfg config.ERPConfig) *SyncService {
	return &SyncService{
		client: NewClient(cfg.URL, cfg.Database, cfg.Username, cfg.Password),
		db:     db,
		cfg:    cfg,
		stop:   make(chan struct{}),
	}
}

// Start begins the background synchronization loop
func (s *SyncService) Start() {
	if s.cfg.URL == "" {
		log.Println("ERP sync disabled: ERP_URL not configured")
		return
	}

	go func() {
		log.Println("📡 ERP Sync Service started")

		if _, err := s.client.Authenticate(); err != nil {
			log.Printf("❌ ERP authentication failed: %v", err)
			return
		}

		// Initial sync delay
		time.Sleep(5 * time.Second)
		s.runFullSync()

		interval := time.Duration(s.cfg.SyncInterval) * time.Minute
		if s.cfg.SyncInterval <= 0 {
			interval = 15 * time.Minute
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runFullSync()
			case <-s.stop:
				log.Println("🛑 ERP Sync Service stopped")
				return
			}
		}
	}()
}

// Stop halts the service
func (s *SyncService) Stop() {
	close(s.stop)
}

// runFullSync runs all sync operations. Partners and products first so the
// order lines can reference them.
func (s *SyncService) runFullSync() {
	log.Println("🔄 ERP: Starting full sync...")

	s.syncPartners()
	s.syncProducts()
	s.syncPurchaseOrders()
	s.syncSaleOrders()

	log.Println("✅ ERP: Full sync completed")
}

func (s *SyncService) upsert(record interface{}) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(record).Error
}

func rawJSON(rec map[string]interface{}) datatypes.JSON {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func (s *SyncService) syncPartners() {
	log.Println("👥 ERP: Syncing Partners...")

	records, err := s.client.SearchRead("res.partner", []interface{}{}, []string{
		"name", "street", "zip", "city", "phone", "email", "vat", "is_company", "company_type",
	}, 1000, 0)
	if err != nil {
		log.Printf("❌ ERP Sync Error (Partners): %v", err)
		return
	}

	count := 0
	for _, rec := range records {
		p := models.ResPartner{
			ID:           recID(rec),
			Name:         asString(rec["name"]),
			Street:       asString(rec["street"]),
			Zip:          asString(rec["zip"]),
			City:         asString(rec["city"]),
			Phone:        asString(rec["phone"]),
			Email:        asString(rec["email"]),
			Vat:          asString(rec["vat"]),
			IsCompany:    asBool(rec["is_company"]),
			CompanyType:  asString(rec["company_type"]),
			LastSyncedAt: time.Now(),
			RawData:      rawJSON(rec),
		}
		if err := s.upsert(&p); err != nil {
			log.Printf("Failed to save partner %d: %v", p.ID, err)
		} else {
			count++
		}
	}

	log.Printf("✅ ERP: Updated %d partners", count)
}

func (s *SyncService) syncProducts() {
	log.Println("📦 ERP: Syncing Products...")

	records, err := s.client.SearchRead("product.product", []interface{}{}, []string{
		"default_code", "barcode", "name", "type", "active", "is_weighable", "uom_name", "weight",
	}, 1000, 0)
	if err != nil {
		log.Printf("❌ ERP Sync Error (Products): %v", err)
		return
	}

	count := 0
	for _, rec := range records {
		p := models.ProductProduct{
			ID:           recID(rec),
			DefaultCode:  asString(rec["default_code"]),
			Barcode:      asString(rec["barcode"]),
			Name:         asString(rec["name"]),
			Active:       asBool(rec["active"]),
			Type:         asString(rec["type"]),
			IsWeighable:  asBool(rec["is_weighable"]),
			UomName:      asString(rec["uom_name"]),
			Weight:       asFloat(rec["weight"]),
			LastSyncedAt: time.Now(),
			RawData:      rawJSON(rec),
		}
		if p.UomName == "" {
			p.UomName = "kg"
		}
		if err := s.upsert(&p); err != nil {
			log.Printf("Failed to save product %d: %v", p.ID, err)
		} else {
			count++
		}
	}

	log.Printf("✅ ERP: Updated %d products", count)
}

func (s *SyncService) syncPurchaseOrders() {
	log.Println("📥 ERP: Syncing Purchase Orders...")

	domain := []interface{}{
		[]interface{}{"state", "in", []interface{}{"purchase", "done"}},
	}
	records, err := s.client.SearchRead("purchase.order", domain, []string{
		"name", "partner_id", "state",
	}, 500, 0)
	if err != nil {
		log.Printf("❌ ERP Sync Error (Purchase Orders): %v", err)
		return
	}

	count := 0
	for _, rec := range records {
		o := models.PurchaseOrder{
			ID:           recID(rec),
			Name:         asString(rec["name"]),
			PartnerID:    many2One(rec["partner_id"]),
			State:        asString(rec["state"]),
			LastSyncedAt: time.Now(),
			RawData:      rawJSON(rec),
		}
		if err := s.upsert(&o); err != nil {
			log.Printf("Failed to save purchase order %d: %v", o.ID, err)
			continue
		}
		count++
		s.syncPurchaseLines(o.ID)
	}

	log.Printf("✅ ERP: Updated %d purchase orders", count)
}

func (s *SyncService) syncPurchaseLines(orderID int64) {
	domain := []interface{}{
		[]interface{}{"order_id", "=", orderID},
	}
	records, err := s.client.SearchRead("purchase.order.line", domain, []string{
		"order_id", "product_id", "product_qty", "qty_received", "sequence",
	}, 200, 0)
	if err != nil {
		log.Printf("❌ ERP Sync Error (Purchase Lines %d): %v", orderID, err)
		return
	}

	for _, rec := range records {
		productID := many2One(rec["product_id"])
		if productID == nil {
			continue
		}
		l := models.PurchaseOrderLine{
			ID:          recID(rec),
			OrderID:     orderID,
			ProductID:   *productID,
			ProductQty:  asFloat(rec["product_qty"]),
			QtyReceived: asFloat(rec["qty_received"]),
			Sequence:    int(asFloat(rec["sequence"])),
		}
		if err := s.upsert(&l); err != nil {
			log.Printf("Failed to save purchase line %d: %v", l.ID, err)
		}
	}
}

func (s *SyncService) syncSaleOrders() {
	log.Println("📤 ERP: Syncing Sale Orders...")

	domain := []interface{}{
		[]interface{}{"state", "in", []interface{}{"sale", "done"}},
	}
	records, err := s.client.SearchRead("sale.order", domain, []string{
		"name", "partner_id", "state",
	}, 500, 0)
	if err != nil {
		log.Printf("❌ ERP Sync Error (Sale Orders): %v", err)
		return
	}

	count := 0
	for _, rec := range records {
		o := models.SaleOrder{
			ID:           recID(rec),
			Name:         asString(rec["name"]),
			PartnerID:    many2One(rec["partner_id"]),
			State:        asString(rec["state"]),
			LastSyncedAt: time.Now(),
			RawData:      rawJSON(rec),
		}
		if err := s.upsert(&o); err != nil {
			log.Printf("Failed to save sale order %d: %v", o.ID, err)
			continue
		}
		count++
		s.syncSaleLines(o.ID)
	}

	log.Printf("✅ ERP: Updated %d sale orders", count)
}

func (s *SyncService) syncSaleLines(orderID int64) {
	domain := []interface{}{
		[]interface{}{"order_id", "=", orderID},
	}
	records, err := s.client.SearchRead("sale.order.line", domain, []string{
		"order_id", "product_id", "product_uom_qty", "qty_delivered", "sequence",
	}, 200, 0)
	if err != nil {
		log.Printf("❌ ERP Sync Error (Sale Lines %d): %v", orderID, err)
		return
	}

	for _, rec := range records {
		productID := many2One(rec["product_id"])
		if productID == nil {
			continue
		}
		l := models.SaleOrderLine{
			ID:            recID(rec),
			OrderID:       orderID,
			ProductID:     *productID,
			ProductUomQty: asFloat(rec["product_uom_qty"]),
			QtyDelivered:  asFloat(rec["qty_delivered"]),
			Sequence:      int(asFloat(rec["sequence"])),
		}
		if err := s.upsert(&l); err != nil {
			log.Printf("Failed to save sale line %d: %v", l.ID, err)
		}
	}
}
