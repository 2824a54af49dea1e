package weighing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/eckscalego/internal/models"
)

func linkerFixture(t *testing.T) (*memStore, *Linker) {
	t.Helper()
	store := newMemStore()
	store.addLocation("supplier")
	store.addLocation("internal")
	store.addLocation("customer")
	return store, NewLinker(store)
}

func TestLinkerCreatesReceiptFromPurchase(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	pallets := store.addProduct("Pallets", false)
	supplier := store.addPartner("Agrar GmbH")
	po := store.addPurchase("PO00001", supplier.ID,
		models.PurchaseOrderLine{ProductID: pallets.ID, ProductQty: 10, Sequence: 5},
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 18000, Sequence: 10},
	)

	w := &models.TruckWeighing{PurchaseOrderID: &po.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	// Canonical pick skips the non-weighable line.
	require.NotNil(t, w.ProductID)
	assert.Equal(t, grain.ID, *w.ProductID)
	require.NotNil(t, w.PurchaseLineID)
	assert.Equal(t, po.Lines[1].ID, *w.PurchaseLineID)
	require.NotNil(t, w.PartnerID)
	assert.Equal(t, supplier.ID, *w.PartnerID)
	assert.Equal(t, models.OperationIncoming, w.OperationType)

	require.NotNil(t, w.PickingID)
	picking, err := store.Pickings().ByID(context.Background(), *w.PickingID)
	require.NoError(t, err)
	assert.Equal(t, models.PickingConfirmed, picking.State)
	assert.Equal(t, "PO00001", picking.Origin)
	assert.Equal(t, models.PickingTypeIncoming, picking.PickingTypeCode)
	require.Len(t, picking.Moves, 2, "one move per line with remaining qty")
	assert.Equal(t, 18000.0, picking.Moves[1].ProductUomQty)
}

func TestLinkerSkipsFulfilledLines(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	barley := store.addProduct("Barley", true)
	supplier := store.addPartner("Agrar GmbH")
	po := store.addPurchase("PO00002", supplier.ID,
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 5000, QtyReceived: 5000, Sequence: 5},
		models.PurchaseOrderLine{ProductID: barley.ID, ProductQty: 9000, Sequence: 10},
	)

	w := &models.TruckWeighing{PurchaseOrderID: &po.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	require.NotNil(t, w.ProductID)
	assert.Equal(t, barley.ID, *w.ProductID, "fully received line is not canonical")

	picking, err := store.Pickings().ByID(context.Background(), *w.PickingID)
	require.NoError(t, err)
	require.Len(t, picking.Moves, 1, "fulfilled lines get no move")
	assert.Equal(t, barley.ID, picking.Moves[0].ProductID)
}

func TestLinkerReusesOpenPicking(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	supplier := store.addPartner("Agrar GmbH")
	po := store.addPurchase("PO00003", supplier.ID,
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 18000},
	)
	existing := &models.StockPicking{
		Name:            "WH/IN/00099",
		State:           models.PickingAssigned,
		PickingTypeCode: models.PickingTypeIncoming,
		Origin:          "PO00003",
	}
	require.NoError(t, store.Pickings().Create(context.Background(), existing))

	w := &models.TruckWeighing{PurchaseOrderID: &po.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	require.NotNil(t, w.PickingID)
	assert.Equal(t, existing.ID, *w.PickingID)
	assert.Equal(t, 1, store.pickingCount(), "no duplicate draft created")
}

func TestLinkerIdempotent(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	supplier := store.addPartner("Agrar GmbH")
	po := store.addPurchase("PO00004", supplier.ID,
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 18000},
	)

	w := &models.TruckWeighing{PurchaseOrderID: &po.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))
	firstPicking := *w.PickingID
	firstLine := *w.PurchaseLineID

	require.NoError(t, linker.Resolve(context.Background(), w))
	require.NoError(t, linker.Resolve(context.Background(), w))

	assert.Equal(t, firstPicking, *w.PickingID)
	assert.Equal(t, firstLine, *w.PurchaseLineID)
	assert.Equal(t, 1, store.pickingCount())
}

func TestLinkerFromReceipt(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	supplier := store.addPartner("Agrar GmbH")
	po := store.addPurchase("PO00005", supplier.ID,
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 18000},
	)
	picking := &models.StockPicking{
		Name:            "WH/IN/00001",
		State:           models.PickingConfirmed,
		PickingTypeCode: models.PickingTypeIncoming,
		PartnerID:       &supplier.ID,
		Origin:          "PO00005",
		LocationDestID:  7,
	}
	require.NoError(t, store.Pickings().Create(context.Background(), picking))
	lineID := po.Lines[0].ID
	require.NoError(t, store.Pickings().CreateMove(context.Background(), &models.StockMove{
		PickingID:      picking.ID,
		ProductID:      grain.ID,
		ProductUomQty:  18000,
		PurchaseLineID: &lineID,
	}))

	w := &models.TruckWeighing{PickingID: &picking.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	require.NotNil(t, w.ProductID)
	assert.Equal(t, grain.ID, *w.ProductID)
	require.NotNil(t, w.PurchaseOrderID)
	assert.Equal(t, po.ID, *w.PurchaseOrderID)
	require.NotNil(t, w.PurchaseLineID)
	assert.Equal(t, lineID, *w.PurchaseLineID)
	require.NotNil(t, w.LocationDestID)
	assert.Equal(t, int64(7), *w.LocationDestID)
	assert.Equal(t, models.OperationIncoming, w.OperationType)
}

func TestLinkerNeverClobbersOperatorFields(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	straw := store.addProduct("Straw", true)
	supplier := store.addPartner("Agrar GmbH")
	operator := store.addPartner("Chosen Partner")
	po := store.addPurchase("PO00006", supplier.ID,
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 18000},
	)

	w := &models.TruckWeighing{
		PurchaseOrderID: &po.ID,
		ProductID:       &straw.ID,
		PartnerID:       &operator.ID,
	}
	require.NoError(t, linker.Resolve(context.Background(), w))

	assert.Equal(t, straw.ID, *w.ProductID, "operator product kept")
	assert.Equal(t, operator.ID, *w.PartnerID, "operator partner kept")
	assert.Nil(t, w.PurchaseLineID, "line not forced when product was chosen")
}

func TestLinkerOrderPartnerBeatsPickingPartner(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	orderPartner := store.addPartner("Order Partner")
	pickingPartner := store.addPartner("Picking Partner")
	po := store.addPurchase("PO00007", orderPartner.ID,
		models.PurchaseOrderLine{ProductID: grain.ID, ProductQty: 18000},
	)
	picking := &models.StockPicking{
		Name:            "WH/IN/00002",
		State:           models.PickingConfirmed,
		PickingTypeCode: models.PickingTypeIncoming,
		PartnerID:       &pickingPartner.ID,
		Origin:          "PO00007",
	}
	require.NoError(t, store.Pickings().Create(context.Background(), picking))

	w := &models.TruckWeighing{PurchaseOrderID: &po.ID, PickingID: &picking.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	require.NotNil(t, w.PartnerID)
	assert.Equal(t, orderPartner.ID, *w.PartnerID)
}

func TestLinkerNoWeighableLine(t *testing.T) {
	store, linker := linkerFixture(t)
	pallets := store.addProduct("Pallets", false)
	supplier := store.addPartner("Agrar GmbH")
	po := store.addPurchase("PO00008", supplier.ID,
		models.PurchaseOrderLine{ProductID: pallets.ID, ProductQty: 10},
	)

	w := &models.TruckWeighing{PurchaseOrderID: &po.ID}
	require.NoError(t, linker.Resolve(context.Background(), w), "missing weighable line is not an error")
	assert.Nil(t, w.ProductID)
	assert.Nil(t, w.PurchaseLineID)
}

func TestLinkerDeliveryFromSale(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	customer := store.addPartner("Mill AG")
	so := store.addSale("SO00001", customer.ID,
		models.SaleOrderLine{ProductID: grain.ID, ProductUomQty: 9500},
	)

	w := &models.TruckWeighing{SaleOrderID: &so.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	require.NotNil(t, w.ProductID)
	assert.Equal(t, grain.ID, *w.ProductID)
	assert.Equal(t, models.OperationOutgoing, w.OperationType)
	require.NotNil(t, w.DeliveryID)
	delivery, err := store.Pickings().ByID(context.Background(), *w.DeliveryID)
	require.NoError(t, err)
	assert.Equal(t, models.PickingTypeOutgoing, delivery.PickingTypeCode)
	assert.Equal(t, models.PickingConfirmed, delivery.State)
	assert.Equal(t, "SO00001", delivery.Origin)
}

func TestLinkerRejectsDanglingReferences(t *testing.T) {
	store, linker := linkerFixture(t)
	missing := int64(9999)

	cases := []struct {
		name string
		w    *models.TruckWeighing
	}{
		{"purchase order", &models.TruckWeighing{PurchaseOrderID: &missing}},
		{"sale order", &models.TruckWeighing{SaleOrderID: &missing}},
		{"picking", &models.TruckWeighing{PickingID: &missing}},
		{"delivery", &models.TruckWeighing{DeliveryID: &missing}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := linker.Resolve(context.Background(), tc.w)
			var nf *NotFoundError
			assert.ErrorAs(t, err, &nf)
		})
	}
	assert.Equal(t, 0, store.pickingCount())
}

func TestLinkerMovesOutgoingPickingToDeliverySlot(t *testing.T) {
	store, linker := linkerFixture(t)
	grain := store.addProduct("Wheat Grain", true)
	customer := store.addPartner("Mill AG")
	delivery := &models.StockPicking{
		Name:            "WH/OUT/00001",
		State:           models.PickingConfirmed,
		PickingTypeCode: models.PickingTypeOutgoing,
		PartnerID:       &customer.ID,
	}
	require.NoError(t, store.Pickings().Create(context.Background(), delivery))
	require.NoError(t, store.Pickings().CreateMove(context.Background(), &models.StockMove{
		PickingID:     delivery.ID,
		ProductID:     grain.ID,
		ProductUomQty: 9500,
	}))

	w := &models.TruckWeighing{PickingID: &delivery.ID}
	require.NoError(t, linker.Resolve(context.Background(), w))

	assert.Nil(t, w.PickingID)
	require.NotNil(t, w.DeliveryID)
	assert.Equal(t, delivery.ID, *w.DeliveryID)
	assert.Equal(t, models.OperationOutgoing, w.OperationType)
}
