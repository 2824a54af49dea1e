package weighing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
)

// memStore is an in-memory repository.Store. Transactions are flat (no
// rollback); the engine's failure paths validate before writing, which is
// what these tests rely on.
type memStore struct {
	mu sync.Mutex

	weighings map[int64]*models.TruckWeighing
	trucks    map[int64]*models.TruckFleet
	scales    map[int64]*models.WeighingScale
	locations []*models.StockLocation
	products  map[int64]*models.ProductProduct
	partners  map[int64]*models.ResPartner
	users     map[string]*models.UserAuth

	pickings  map[int64]*models.StockPicking
	moves     map[int64]*models.StockMove
	moveLines map[int64]*models.StockMoveLine
	notes     []models.DocumentNote

	// State of each picking at every save, oldest first.
	pickingStates map[int64][]models.PickingState

	purchases map[int64]*models.PurchaseOrder
	sales     map[int64]*models.SaleOrder

	nextID    int64
	weighSeq  int64
	pickSeq   map[string]int64
	claimBusy bool // next claim reports ErrClaimConflict
}

func newMemStore() *memStore {
	return &memStore{
		weighings: map[int64]*models.TruckWeighing{},
		trucks:    map[int64]*models.TruckFleet{},
		scales:    map[int64]*models.WeighingScale{},
		products:  map[int64]*models.ProductProduct{},
		partners:  map[int64]*models.ResPartner{},
		users:     map[string]*models.UserAuth{},
		pickings:  map[int64]*models.StockPicking{},
		moves:     map[int64]*models.StockMove{},
		moveLines: map[int64]*models.StockMoveLine{},
		purchases: map[int64]*models.PurchaseOrder{},
		sales:     map[int64]*models.SaleOrder{},
		pickSeq:   map[string]int64{},

		pickingStates: map[int64][]models.PickingState{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) Weighings() repository.WeighingRepo { return (*memWeighings)(s) }
func (s *memStore) Pickings() repository.PickingRepo   { return (*memPickings)(s) }
func (s *memStore) Orders() repository.OrderRepo       { return (*memOrders)(s) }
func (s *memStore) Trucks() repository.TruckRepo       { return (*memTrucks)(s) }
func (s *memStore) Scales() repository.ScaleRepo       { return (*memScales)(s) }
func (s *memStore) Locations() repository.LocationRepo { return (*memLocations)(s) }
func (s *memStore) Products() repository.ProductRepo   { return (*memProducts)(s) }
func (s *memStore) Partners() repository.PartnerRepo   { return (*memPartners)(s) }
func (s *memStore) Users() repository.UserRepo         { return (*memUsers)(s) }

func (s *memStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

func (s *memStore) LockWeighing(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.weighings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *memStore) ClaimOpenWeighing(ctx context.Context, scaleID *int64) (*models.TruckWeighing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimBusy {
		s.claimBusy = false
		return nil, repository.ErrClaimConflict
	}
	var open []*models.TruckWeighing
	for _, w := range s.weighings {
		if !w.IsOpen() {
			continue
		}
		if scaleID != nil && (w.ScaleID == nil || *w.ScaleID != *scaleID) {
			continue
		}
		open = append(open, w)
	}
	if len(open) == 0 {
		return nil, repository.ErrNoOpenWeighing
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].WeighingDate.Equal(open[j].WeighingDate) {
			return open[i].WeighingDate.After(open[j].WeighingDate)
		}
		return open[i].ID > open[j].ID
	})
	cp := *open[0]
	return &cp, nil
}

type memWeighings memStore

func (r *memWeighings) Create(ctx context.Context, w *models.TruckWeighing) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.id()
	if w.WeighingDate.IsZero() {
		w.WeighingDate = time.Now().UTC()
	}
	cp := *w
	s.weighings[w.ID] = &cp
	return nil
}

func (r *memWeighings) Save(ctx context.Context, w *models.TruckWeighing) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.weighings[w.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *w
	s.weighings[w.ID] = &cp
	return nil
}

func (r *memWeighings) ByID(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.weighings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memWeighings) List(ctx context.Context, f repository.WeighingFilter) ([]models.TruckWeighing, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TruckWeighing
	for _, w := range s.weighings {
		if f.State != "" && w.State != f.State {
			continue
		}
		if f.TruckID != 0 && w.TruckID != f.TruckID {
			continue
		}
		if f.ScaleID != 0 && (w.ScaleID == nil || *w.ScaleID != f.ScaleID) {
			continue
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memWeighings) NextReference(ctx context.Context) (string, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weighSeq++
	return fmt.Sprintf("WB/%05d", s.weighSeq), nil
}

type memPickings memStore

func (r *memPickings) ByID(ctx context.Context, id int64) (*models.StockPicking, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPicking(id)
}

// loadPicking assembles a picking copy with moves and products, callers hold
// the mutex.
func (s *memStore) loadPicking(id int64) (*models.StockPicking, error) {
	p, ok := s.pickings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Moves = nil
	var ids []int64
	for mid, m := range s.moves {
		if m.PickingID == id {
			ids = append(ids, mid)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.moves[ids[i]], s.moves[ids[j]]
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID < b.ID
	})
	for _, mid := range ids {
		m := *s.moves[mid]
		if prod, ok := s.products[m.ProductID]; ok {
			pc := *prod
			m.Product = &pc
		}
		cp.Moves = append(cp.Moves, m)
	}
	return &cp, nil
}

func (r *memPickings) FindOpenByOrigin(ctx context.Context, origin, typeCode string) (*models.StockPicking, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, p := range s.pickings {
		if p.Origin == origin && p.PickingTypeCode == typeCode && p.IsOpen() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return s.loadPicking(ids[0])
}

func (r *memPickings) Create(ctx context.Context, p *models.StockPicking) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	cp := *p
	cp.Moves = nil
	s.pickings[p.ID] = &cp
	return nil
}

func (r *memPickings) Save(ctx context.Context, p *models.StockPicking) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pickings[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	cp.Moves = nil
	s.pickings[p.ID] = &cp
	s.pickingStates[p.ID] = append(s.pickingStates[p.ID], p.State)
	return nil
}

func (r *memPickings) CreateMove(ctx context.Context, m *models.StockMove) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	cp := *m
	cp.Product = nil
	s.moves[m.ID] = &cp
	return nil
}

func (r *memPickings) MoveLines(ctx context.Context, moveID int64) ([]models.StockMoveLine, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StockMoveLine
	for _, ml := range s.moveLines {
		if ml.MoveID == moveID {
			out = append(out, *ml)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPickings) CreateMoveLine(ctx context.Context, ml *models.StockMoveLine) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	ml.ID = s.id()
	cp := *ml
	s.moveLines[ml.ID] = &cp
	return nil
}

func (r *memPickings) SaveMoveLine(ctx context.Context, ml *models.StockMoveLine) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.moveLines[ml.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *ml
	s.moveLines[ml.ID] = &cp
	return nil
}

func (r *memPickings) AddNote(ctx context.Context, pickingID int64, body string) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, models.DocumentNote{
		ID:        s.id(),
		PickingID: pickingID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r *memPickings) NextReference(ctx context.Context, typeCode string) (string, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pickSeq[typeCode]++
	prefix := "WH/IN/"
	if typeCode == models.PickingTypeOutgoing {
		prefix = "WH/OUT/"
	}
	return fmt.Sprintf("%s%05d", prefix, s.pickSeq[typeCode]), nil
}

type memOrders memStore

func (r *memOrders) PurchaseByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.purchases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrders) PurchaseByName(ctx context.Context, name string) (*models.PurchaseOrder, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.purchases {
		if o.Name == name {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memOrders) PurchaseByLine(ctx context.Context, lineID int64) (*models.PurchaseOrder, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.purchases {
		for _, l := range o.Lines {
			if l.ID == lineID {
				cp := *o
				return &cp, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memOrders) SaleByID(ctx context.Context, id int64) (*models.SaleOrder, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrders) SaleByName(ctx context.Context, name string) (*models.SaleOrder, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.sales {
		if o.Name == name {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memOrders) SaleByLine(ctx context.Context, lineID int64) (*models.SaleOrder, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.sales {
		for _, l := range o.Lines {
			if l.ID == lineID {
				cp := *o
				return &cp, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

type memTrucks memStore

func (r *memTrucks) ByID(ctx context.Context, id int64) (*models.TruckFleet, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trucks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTrucks) ByPlate(ctx context.Context, plate string) (*models.TruckFleet, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trucks {
		if t.PlateNumber == plate {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTrucks) Create(ctx context.Context, t *models.TruckFleet) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	cp := *t
	s.trucks[t.ID] = &cp
	return nil
}

func (r *memTrucks) List(ctx context.Context) ([]models.TruckFleet, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TruckFleet
	for _, t := range s.trucks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memScales memStore

func (r *memScales) ByID(ctx context.Context, id int64) (*models.WeighingScale, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (r *memScales) Create(ctx context.Context, sc *models.WeighingScale) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = s.id()
	cp := *sc
	s.scales[sc.ID] = &cp
	return nil
}

func (r *memScales) Save(ctx context.Context, sc *models.WeighingScale) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scales[sc.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *sc
	s.scales[sc.ID] = &cp
	return nil
}

func (r *memScales) List(ctx context.Context) ([]models.WeighingScale, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WeighingScale
	for _, sc := range s.scales {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memScales) FirstEnabled(ctx context.Context) (*models.WeighingScale, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, sc := range s.scales {
		if sc.Active && sc.IsEnabled {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cp := *s.scales[ids[0]]
	return &cp, nil
}

type memLocations memStore

func (r *memLocations) ByUsage(ctx context.Context, usage string) (*models.StockLocation, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.locations {
		if l.Usage == usage && l.Active {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memProducts memStore

func (r *memProducts) ByID(ctx context.Context, id int64) (*models.ProductProduct, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type memPartners memStore

func (r *memPartners) ByID(ctx context.Context, id int64) (*models.ResPartner, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type memUsers memStore

func (r *memUsers) ByUsername(ctx context.Context, username string) (*models.UserAuth, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Save(ctx context.Context, u *models.UserAuth) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

// fakeGateway returns a scripted weight or error. onRead, when set, runs
// during the read to model activity while the scale is being polled.
type fakeGateway struct {
	weight float64
	err    error
	reads  int
	onRead func()
}

func (g *fakeGateway) ReadWeight(ctx context.Context, s *models.WeighingScale) (float64, error) {
	g.reads++
	if g.onRead != nil {
		g.onRead()
	}
	if g.err != nil {
		return 0, g.err
	}
	return g.weight, nil
}

// Fixture builders.

func (s *memStore) addTruck(plate, driver string) *models.TruckFleet {
	t := &models.TruckFleet{PlateNumber: plate, DriverName: driver, Active: true, TrailerCount: 1}
	_ = (*memTrucks)(s).Create(context.Background(), t)
	return t
}

func (s *memStore) addScale(name string, enabled bool) *models.WeighingScale {
	sc := &models.WeighingScale{Name: name, Active: true, IsEnabled: enabled, IPAddress: "127.0.0.1", Port: 5000}
	_ = (*memScales)(s).Create(context.Background(), sc)
	return sc
}

func (s *memStore) addLocation(usage string) *models.StockLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &models.StockLocation{ID: s.id(), Name: usage, Usage: usage, Active: true}
	s.locations = append(s.locations, l)
	return l
}

func (s *memStore) addProduct(name string, weighable bool) *models.ProductProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.ProductProduct{ID: s.id(), Name: name, Active: true, IsWeighable: weighable, UomName: "kg"}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addPartner(name string) *models.ResPartner {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.ResPartner{ID: s.id(), Name: name}
	s.partners[p.ID] = p
	return p
}

func (s *memStore) addPurchase(name string, partnerID int64, lines ...models.PurchaseOrderLine) *models.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &models.PurchaseOrder{ID: s.id(), Name: name, PartnerID: &partnerID, State: models.PurchaseStateConfirmed}
	for i := range lines {
		lines[i].ID = s.id()
		lines[i].OrderID = o.ID
		if p, ok := s.products[lines[i].ProductID]; ok {
			cp := *p
			lines[i].Product = &cp
		}
	}
	o.Lines = lines
	s.purchases[o.ID] = o
	return o
}

func (s *memStore) addSale(name string, partnerID int64, lines ...models.SaleOrderLine) *models.SaleOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &models.SaleOrder{ID: s.id(), Name: name, PartnerID: &partnerID, State: models.SaleStateConfirmed}
	for i := range lines {
		lines[i].ID = s.id()
		lines[i].OrderID = o.ID
		if p, ok := s.products[lines[i].ProductID]; ok {
			cp := *p
			lines[i].Product = &cp
		}
	}
	o.Lines = lines
	s.sales[o.ID] = o
	return o
}

func (s *memStore) stateTrace(pickingID int64) []models.PickingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickingStates[pickingID]
}

func (s *memStore) pickingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pickings)
}

func (s *memStore) noteBodies(pickingID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, n := range s.notes {
		if n.PickingID == pickingID {
			out = append(out, n.Body)
		}
	}
	return out
}
