package stock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/application/stock"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// memStockRepo fake en memoria de StockRepository. Sin bloqueo real: los tests
// de concurrencia viven en el caso de uso, no aquí.
type memStockRepo struct {
	entries map[string]*entity.StockEntry
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{entries: make(map[string]*entity.StockEntry)}
}

func key(productID, branchID string) string { return productID + "|" + branchID }

func (m *memStockRepo) Get(productID, branchID string) (*entity.StockEntry, error) {
	e, ok := m.entries[key(productID, branchID)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *memStockRepo) GetForUpdate(productID, branchID string) (*entity.StockEntry, error) {
	return m.Get(productID, branchID)
}

func (m *memStockRepo) CreateIfAbsent(productID, branchID string) error {
	if _, ok := m.entries[key(productID, branchID)]; !ok {
		m.entries[key(productID, branchID)] = &entity.StockEntry{ProductID: productID, BranchID: branchID}
	}
	return nil
}

func (m *memStockRepo) Upsert(entry *entity.StockEntry) error {
	cp := *entry
	m.entries[key(entry.ProductID, entry.BranchID)] = &cp
	return nil
}

func (m *memStockRepo) ListLowStock(branchID string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	for _, e := range m.entries {
		if e.LowStock && (branchID == "" || e.BranchID == branchID) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

var now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestAdjust_CreaEntradaConCredito(t *testing.T) {
	repo := newMemStockRepo()
	ledger := stock.NewLedger()

	qty, err := ledger.Adjust(repo, "p1", "sucursal-A", 10, nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty, "la entrada se crea perezosamente con el primer crédito")

	entry, err := repo.Get("p1", "sucursal-A")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(10), entry.Quantity)
	assert.False(t, entry.LowStock)
}

func TestAdjust_DebitoSinEntrada(t *testing.T) {
	repo := newMemStockRepo()
	ledger := stock.NewLedger()

	_, err := ledger.Adjust(repo, "p1", "sucursal-A", -1, nil, now)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "no se puede debitar donde nunca hubo stock")
}

func TestAdjust_NuncaNegativo(t *testing.T) {
	repo := newMemStockRepo()
	ledger := stock.NewLedger()

	_, err := ledger.Adjust(repo, "p1", "sucursal-A", 5, nil, now)
	require.NoError(t, err)

	_, err = ledger.Adjust(repo, "p1", "sucursal-A", -6, nil, now)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El fallo no tocó la cantidad.
	qty, err := ledger.GetQuantity(repo, "p1", "sucursal-A")
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)

	// Agotar exactamente a cero sí es válido.
	qty, err = ledger.Adjust(repo, "p1", "sucursal-A", -5, nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

func TestAdjust_RecalculaStockBajo(t *testing.T) {
	repo := newMemStockRepo()
	ledger := stock.NewLedger()
	min := int64(4)

	_, err := ledger.Adjust(repo, "p1", "sucursal-A", 10, &min, now)
	require.NoError(t, err)
	entry, _ := repo.Get("p1", "sucursal-A")
	assert.False(t, entry.LowStock)

	_, err = ledger.Adjust(repo, "p1", "sucursal-A", -7, &min, now)
	require.NoError(t, err)
	entry, _ = repo.Get("p1", "sucursal-A")
	assert.True(t, entry.LowStock, "3 < 4 marca stock bajo")

	// Sin umbral el indicador queda en false aunque la cantidad sea baja.
	_, err = ledger.Adjust(repo, "p1", "sucursal-A", -1, nil, now)
	require.NoError(t, err)
	entry, _ = repo.Get("p1", "sucursal-A")
	assert.False(t, entry.LowStock)
}

// contendedStockRepo simula a otra transacción que confirma su crédito entre
// el primer GetForUpdate (que no ve fila alguna) y la creación de la entrada.
type contendedStockRepo struct {
	*memStockRepo
	missed bool
}

func (r *contendedStockRepo) GetForUpdate(productID, branchID string) (*entity.StockEntry, error) {
	if !r.missed {
		r.missed = true
		// La otra transacción crea la entrada con su crédito y confirma.
		_ = r.memStockRepo.Upsert(&entity.StockEntry{ProductID: productID, BranchID: branchID, Quantity: 4})
		return nil, nil
	}
	return r.memStockRepo.GetForUpdate(productID, branchID)
}

// Dos créditos concurrentes sobre una entrada inexistente: el segundo no debe
// pisar el del primero al crear la fila.
func TestAdjust_CreacionConcurrenteNoPierdeCreditos(t *testing.T) {
	repo := &contendedStockRepo{memStockRepo: newMemStockRepo()}
	ledger := stock.NewLedger()

	qty, err := ledger.Adjust(repo, "p1", "sucursal-A", 3, nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty, "el crédito ajeno ya confirmado no se pierde")

	entry, err := repo.Get("p1", "sucursal-A")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(7), entry.Quantity)
}

func TestGetQuantity_SinEntrada(t *testing.T) {
	repo := newMemStockRepo()
	ledger := stock.NewLedger()

	qty, err := ledger.GetQuantity(repo, "p1", "sucursal-A")
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty, "la ausencia de entrada es cantidad cero, no error")
}
