package sale_test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	appsale "github.com/jhoicas/sucursales-api/internal/application/sale"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// store estado compartido de los fakes de ventas. El TxRunner falso serializa
// las transacciones con un mutex y restaura el snapshot en caso de error, lo
// que permite verificar tanto la atomicidad como la carrera de dos ventas
// concurrentes por las últimas unidades.
type store struct {
	mu       sync.Mutex
	sales    map[string]*entity.Sale
	stock    map[string]*entity.StockEntry
	products map[string]*entity.Product
	branches map[string]*entity.Branch
	clients  map[string]*entity.Client
	taxes    map[string]*entity.TaxType
	series   map[string]*entity.DocumentSeries
	perms    map[string][]entity.Permission
}

func newStore() *store {
	return &store{
		sales:    make(map[string]*entity.Sale),
		stock:    make(map[string]*entity.StockEntry),
		products: make(map[string]*entity.Product),
		branches: make(map[string]*entity.Branch),
		clients:  make(map[string]*entity.Client),
		taxes:    make(map[string]*entity.TaxType),
		series:   make(map[string]*entity.DocumentSeries),
		perms:    make(map[string][]entity.Permission),
	}
}

func (s *store) addBranch(id string) {
	s.branches[id] = &entity.Branch{ID: id, Name: id, Active: true}
}

func (s *store) addClient(id string) {
	s.clients[id] = &entity.Client{ID: id, Document: "DOC-" + id, Name: "Cliente " + id}
}

func (s *store) addProduct(id, price string, minStock *int64) {
	p, _ := decimal.NewFromString(price)
	s.products[id] = &entity.Product{ID: id, SKU: "SKU-" + id, Name: id, Price: p, MinStock: minStock}
}

func (s *store) addTax(id, pct string) {
	p, _ := decimal.NewFromString(pct)
	s.taxes[id] = &entity.TaxType{ID: id, Name: id, Percentage: p}
}

func (s *store) addSeries(branchID, docTypeID, series string, width int) {
	s.series[branchID+"|"+docTypeID] = &entity.DocumentSeries{
		ID: branchID + "|" + docTypeID, BranchID: branchID, DocTypeID: docTypeID,
		Series: series, Width: width,
	}
}

func (s *store) setStock(productID, branchID string, qty int64) {
	s.stock[productID+"|"+branchID] = &entity.StockEntry{ProductID: productID, BranchID: branchID, Quantity: qty}
}

func (s *store) stockQty(productID, branchID string) int64 {
	if e, ok := s.stock[productID+"|"+branchID]; ok {
		return e.Quantity
	}
	return 0
}

func (s *store) grant(userID, code, branchID string) {
	s.perms[userID] = append(s.perms[userID], entity.Permission{Code: code, BranchID: branchID})
}

// ── repositorios fake ─────────────────────────────────────────────────────────

type fakeSaleRepo struct{ s *store }

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	r.s.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(sale), nil
}

func (r *fakeSaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *fakeSaleRepo) UpdateHeader(sale *entity.Sale) error {
	existing, ok := r.s.sales[sale.ID]
	if !ok {
		return nil
	}
	existing.Cancelled = sale.Cancelled
	existing.CancelReason = sale.CancelReason
	existing.Declared = sale.Declared
	existing.ExternalID = sale.ExternalID
	existing.UpdatedAt = sale.UpdatedAt
	return nil
}

func (r *fakeSaleRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, sale := range r.s.sales {
		if sale.BranchID == branchID {
			out = append(out, cloneSale(sale))
		}
	}
	return out, nil
}

type fakeStockRepo struct{ s *store }

func (r *fakeStockRepo) Get(productID, branchID string) (*entity.StockEntry, error) {
	e, ok := r.s.stock[productID+"|"+branchID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeStockRepo) GetForUpdate(productID, branchID string) (*entity.StockEntry, error) {
	return r.Get(productID, branchID)
}

func (r *fakeStockRepo) CreateIfAbsent(productID, branchID string) error {
	if _, ok := r.s.stock[productID+"|"+branchID]; !ok {
		r.s.stock[productID+"|"+branchID] = &entity.StockEntry{ProductID: productID, BranchID: branchID}
	}
	return nil
}

func (r *fakeStockRepo) Upsert(entry *entity.StockEntry) error {
	cp := *entry
	r.s.stock[entry.ProductID+"|"+entry.BranchID] = &cp
	return nil
}

func (r *fakeStockRepo) ListLowStock(branchID string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	for _, e := range r.s.stock {
		if e.LowStock && (branchID == "" || e.BranchID == branchID) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProductRepo struct{ s *store }

func (r *fakeProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error { r.s.products[p.ID] = p; return nil }

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }

func (r *fakeProductRepo) Delete(id string) error { delete(r.s.products, id); return nil }

type fakeBranchRepo struct{ s *store }

func (r *fakeBranchRepo) Create(b *entity.Branch) error { r.s.branches[b.ID] = b; return nil }

func (r *fakeBranchRepo) GetByID(id string) (*entity.Branch, error) {
	b, ok := r.s.branches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBranchRepo) List() ([]*entity.Branch, error) { return nil, nil }

type fakeClientRepo struct{ s *store }

func (r *fakeClientRepo) Create(c *entity.Client) error { r.s.clients[c.ID] = c; return nil }

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) List(limit, offset int) ([]*entity.Client, error) { return nil, nil }

type fakeTaxRepo struct{ s *store }

func (r *fakeTaxRepo) GetByID(id string) (*entity.TaxType, error) {
	t, ok := r.s.taxes[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaxRepo) List() ([]*entity.TaxType, error) { return nil, nil }

type fakeSeriesRepo struct{ s *store }

func (r *fakeSeriesRepo) GetForUpdate(branchID, docTypeID string) (*entity.DocumentSeries, error) {
	sr, ok := r.s.series[branchID+"|"+docTypeID]
	if !ok {
		return nil, nil
	}
	cp := *sr
	return &cp, nil
}

func (r *fakeSeriesRepo) Update(series *entity.DocumentSeries) error {
	cp := *series
	r.s.series[series.BranchID+"|"+series.DocTypeID] = &cp
	return nil
}

type fakePermRepo struct{ s *store }

func (r *fakePermRepo) ResolveForUser(userID string, codes []string) ([]entity.Permission, error) {
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}
	var out []entity.Permission
	for _, p := range r.s.perms[userID] {
		if wanted[p.Code] {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeTxRunner serializa las transacciones y restaura el snapshot al fallar.
type fakeTxRunner struct{ s *store }

var _ appsale.TxRunner = (*fakeTxRunner)(nil)

func (tr *fakeTxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	seriesRepo repository.SeriesRepository,
) error) error {
	tr.s.mu.Lock()
	defer tr.s.mu.Unlock()

	stockSnap := snapshotStock(tr.s.stock)
	salesSnap := snapshotSales(tr.s.sales)
	seriesSnap := snapshotSeries(tr.s.series)

	err := fn(&fakeSaleRepo{s: tr.s}, &fakeStockRepo{s: tr.s}, &fakeProductRepo{s: tr.s}, &fakeSeriesRepo{s: tr.s})
	if err != nil {
		tr.s.stock = stockSnap
		tr.s.sales = salesSnap
		tr.s.series = seriesSnap
	}
	return err
}

func snapshotStock(m map[string]*entity.StockEntry) map[string]*entity.StockEntry {
	out := make(map[string]*entity.StockEntry, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func snapshotSales(m map[string]*entity.Sale) map[string]*entity.Sale {
	out := make(map[string]*entity.Sale, len(m))
	for k, v := range m {
		out[k] = cloneSale(v)
	}
	return out
}

func snapshotSeries(m map[string]*entity.DocumentSeries) map[string]*entity.DocumentSeries {
	out := make(map[string]*entity.DocumentSeries, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneSale(s *entity.Sale) *entity.Sale {
	cp := *s
	cp.Lines = append([]entity.SaleLine(nil), s.Lines...)
	return &cp
}
