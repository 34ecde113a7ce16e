package transfer_test

import (
	"context"
	"sync"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// store estado compartido de los fakes. El TxRunner falso toma un snapshot de
// stock y transferencias antes de ejecutar la función y lo restaura si falla,
// para poder verificar la atomicidad de Send/Receive/Cancel.
type store struct {
	mu        sync.Mutex
	transfers map[string]*entity.Transfer
	stock     map[string]*entity.StockEntry
	products  map[string]*entity.Product
	branches  map[string]*entity.Branch
	perms     map[string][]entity.Permission
}

func newStore() *store {
	return &store{
		transfers: make(map[string]*entity.Transfer),
		stock:     make(map[string]*entity.StockEntry),
		products:  make(map[string]*entity.Product),
		branches:  make(map[string]*entity.Branch),
		perms:     make(map[string][]entity.Permission),
	}
}

func (s *store) addBranch(id string) {
	s.branches[id] = &entity.Branch{ID: id, Name: id, Active: true}
}

func (s *store) addProduct(id string, minStock *int64) {
	s.products[id] = &entity.Product{ID: id, SKU: "SKU-" + id, Name: id, MinStock: minStock}
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

func (s *store) hasStockEntry(productID, branchID string) bool {
	_, ok := s.stock[productID+"|"+branchID]
	return ok
}

func (s *store) grant(userID, code, branchID string) {
	s.perms[userID] = append(s.perms[userID], entity.Permission{Code: code, BranchID: branchID})
}

// ── repositorios fake ─────────────────────────────────────────────────────────

type fakeTransferRepo struct{ s *store }

func (r *fakeTransferRepo) Create(t *entity.Transfer) error {
	cp := cloneTransfer(t)
	r.s.transfers[t.ID] = cp
	return nil
}

func (r *fakeTransferRepo) GetByID(id string) (*entity.Transfer, error) {
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	return cloneTransfer(t), nil
}

func (r *fakeTransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.GetByID(id)
}

func (r *fakeTransferRepo) Update(t *entity.Transfer) error {
	existing, ok := r.s.transfers[t.ID]
	if !ok {
		return nil
	}
	cp := cloneTransfer(t)
	cp.Items = existing.Items // los ítems se mutan por sus propios métodos
	r.s.transfers[t.ID] = cp
	return nil
}

func (r *fakeTransferRepo) AddItems(transferID string, items []entity.TransferItem) error {
	t := r.s.transfers[transferID]
	t.Items = append(t.Items, items...)
	return nil
}

func (r *fakeTransferRepo) UpdateItemQuantity(transferID, productID string, quantity int64) error {
	t := r.s.transfers[transferID]
	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			t.Items[i].Quantity = quantity
		}
	}
	return nil
}

func (r *fakeTransferRepo) RemoveItem(transferID, productID string) error {
	t := r.s.transfers[transferID]
	items := t.Items[:0]
	for _, it := range t.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	t.Items = items
	return nil
}

func (r *fakeTransferRepo) Delete(id string) error {
	delete(r.s.transfers, id)
	return nil
}

func (r *fakeTransferRepo) List(limit, offset int) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	for _, t := range r.s.transfers {
		out = append(out, cloneTransfer(t))
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

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

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

func (r *fakeBranchRepo) List() ([]*entity.Branch, error) {
	var out []*entity.Branch
	for _, b := range r.s.branches {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
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

// fakeTxRunner serializa las "transacciones" con un mutex y restaura el
// snapshot si la función falla, imitando el rollback.
type fakeTxRunner struct{ s *store }

func (tr *fakeTxRunner) Run(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	tr.s.mu.Lock()
	defer tr.s.mu.Unlock()

	stockSnap := snapshotStock(tr.s.stock)
	transferSnap := snapshotTransfers(tr.s.transfers)

	err := fn(&fakeTransferRepo{s: tr.s}, &fakeStockRepo{s: tr.s}, &fakeProductRepo{s: tr.s})
	if err != nil {
		tr.s.stock = stockSnap
		tr.s.transfers = transferSnap
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

func snapshotTransfers(m map[string]*entity.Transfer) map[string]*entity.Transfer {
	out := make(map[string]*entity.Transfer, len(m))
	for k, v := range m {
		out[k] = cloneTransfer(v)
	}
	return out
}

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	cp := *t
	cp.Items = append([]entity.TransferItem(nil), t.Items...)
	if t.DepartedAt != nil {
		d := *t.DepartedAt
		cp.DepartedAt = &d
	}
	if t.ArrivedAt != nil {
		a := *t.ArrivedAt
		cp.ArrivedAt = &a
	}
	return &cp
}
