package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/application/authz"
	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/stock"
	"github.com/jhoicas/sucursales-api/internal/application/transfer"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// newWorkflow arma el caso de uso completo sobre los fakes. El usuario
// "gerente" tiene todos los permisos globales; "vendedor-A" solo los atados
// a sucursal-A.
func newWorkflow(s *store) *transfer.Workflow {
	s.grant("gerente", entity.PermTransferManageAny, "")
	s.grant("gerente", entity.PermTransferSendAny, "")
	s.grant("gerente", entity.PermTransferReceiveAny, "")
	s.grant("vendedor-A", entity.PermTransferManageRelated, "sucursal-A")
	s.grant("vendedor-A", entity.PermTransferSendRelated, "sucursal-A")

	return transfer.NewWorkflow(
		&fakeTxRunner{s: s},
		&fakeTransferRepo{s: s},
		&fakeStockRepo{s: s},
		&fakeProductRepo{s: s},
		&fakeBranchRepo{s: s},
		stock.NewLedger(),
		authz.NewGate(&fakePermRepo{s: s}),
		func() time.Time { return fixedNow },
	)
}

func baseStore() *store {
	s := newStore()
	s.addBranch("sucursal-A")
	s.addBranch("sucursal-B")
	s.addProduct("p1", nil)
	s.setStock("p1", "sucursal-A", 10)
	return s
}

func createTransfer(t *testing.T, wf *transfer.Workflow, qty int64) *entity.Transfer {
	t.Helper()
	tr, err := wf.Create(context.Background(), "gerente", "sucursal-B",
		[]dto.TransferItemRequest{{ProductID: "p1", Quantity: qty}})
	require.NoError(t, err)
	return tr
}

// Escenario completo: enviar debita el origen, cancelar lo restaura, y un
// nuevo envío recibido deja 5 y 5.
func TestWorkflow_CicloEnvioCancelacionRecepcion(t *testing.T) {
	s := baseStore()
	wf := newWorkflow(s)
	ctx := context.Background()

	tr := createTransfer(t, wf, 5)
	assert.Equal(t, entity.TransferRequested, tr.State)
	assert.True(t, tr.Modifiable)

	// Enviar desde A: el stock del origen baja de 10 a 5.
	sent, err := wf.Send(ctx, "gerente", tr.ID, "sucursal-A")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferSent, sent.State)
	assert.Equal(t, int64(5), s.stockQty("p1", "sucursal-A"))

	// Cancelar antes de recibir: el stock vuelve a 10 y la transferencia
	// regresa a SOLICITADA editable.
	cancelled, err := wf.Cancel(ctx, "gerente", tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferRequested, cancelled.State)
	assert.True(t, cancelled.Modifiable)
	assert.Empty(t, cancelled.OriginBranchID)
	assert.Nil(t, cancelled.DepartedAt)
	assert.Equal(t, int64(10), s.stockQty("p1", "sucursal-A"))

	// Reenviar y recibir: A=5, B=5 (la entrada de B se crea al recibir).
	_, err = wf.Send(ctx, "gerente", tr.ID, "sucursal-A")
	require.NoError(t, err)
	assert.False(t, s.hasStockEntry("p1", "sucursal-B"), "el destino aún no tiene entrada")

	received, err := wf.Receive(ctx, "gerente", tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferReceived, received.State)
	require.NotNil(t, received.ArrivedAt)
	assert.Equal(t, int64(5), s.stockQty("p1", "sucursal-A"))
	assert.Equal(t, int64(5), s.stockQty("p1", "sucursal-B"))
}

func TestWorkflow_EnvioSinStockAbortaCompleto(t *testing.T) {
	s := baseStore()
	s.addProduct("p2", nil)
	s.setStock("p2", "sucursal-A", 1)
	wf := newWorkflow(s)
	ctx := context.Background()

	tr, err := wf.Create(ctx, "gerente", "sucursal-B", []dto.TransferItemRequest{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 2}, // solo hay 1
	})
	require.NoError(t, err)

	_, err = wf.Send(ctx, "gerente", tr.ID, "sucursal-A")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada se debitó y la transferencia sigue en SOLICITADA.
	assert.Equal(t, int64(10), s.stockQty("p1", "sucursal-A"))
	assert.Equal(t, int64(1), s.stockQty("p2", "sucursal-A"))
	reloaded, err := wf.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferRequested, reloaded.State)
	assert.True(t, reloaded.Modifiable)
}

func TestWorkflow_EdicionDeItems(t *testing.T) {
	s := baseStore()
	s.addProduct("p2", nil)
	wf := newWorkflow(s)
	ctx := context.Background()

	tr := createTransfer(t, wf, 5)

	// Agregar un producto distinto funciona; repetir el existente no.
	updated, err := wf.AddItems(ctx, "gerente", tr.ID, []dto.TransferItemRequest{{ProductID: "p2", Quantity: 1}})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)

	_, err = wf.AddItems(ctx, "gerente", tr.ID, []dto.TransferItemRequest{{ProductID: "p1", Quantity: 2}})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	require.NoError(t, wf.UpdateItemQuantity(ctx, "gerente", tr.ID, "p2", 7))
	require.NoError(t, wf.RemoveItem(ctx, "gerente", tr.ID, "p1"))

	reloaded, err := wf.Get(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, "p2", reloaded.Items[0].ProductID)
	assert.Equal(t, int64(7), reloaded.Items[0].Quantity)
}

func TestWorkflow_EnviadaNoEsEditable(t *testing.T) {
	s := baseStore()
	s.addProduct("p2", nil)
	wf := newWorkflow(s)
	ctx := context.Background()

	tr := createTransfer(t, wf, 5)
	_, err := wf.Send(ctx, "gerente", tr.ID, "sucursal-A")
	require.NoError(t, err)

	_, err = wf.AddItems(ctx, "gerente", tr.ID, []dto.TransferItemRequest{{ProductID: "p2", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotModifiable)
	err = wf.UpdateItemQuantity(ctx, "gerente", tr.ID, "p1", 9)
	assert.ErrorIs(t, err, domain.ErrNotModifiable)
	err = wf.RemoveItem(ctx, "gerente", tr.ID, "p1")
	assert.ErrorIs(t, err, domain.ErrNotModifiable)
	err = wf.Delete(ctx, "gerente", tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "solo una SOLICITADA se puede eliminar")
}

func TestWorkflow_PermisosPorSucursal(t *testing.T) {
	s := baseStore()
	wf := newWorkflow(s)
	ctx := context.Background()

	// vendedor-A solo gestiona sucursal-A: crear hacia B está prohibido.
	_, err := wf.Create(ctx, "vendedor-A", "sucursal-B",
		[]dto.TransferItemRequest{{ProductID: "p1", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Enviar desde A sí puede (permiso _RELATED sobre A).
	tr := createTransfer(t, wf, 2)
	sent, err := wf.Send(ctx, "vendedor-A", tr.ID, "sucursal-A")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferSent, sent.State)

	// Recibir requiere permiso sobre el destino; vendedor-A no lo tiene.
	_, err = wf.Receive(ctx, "vendedor-A", tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestWorkflow_CompareProyectaSinMutar(t *testing.T) {
	s := baseStore()
	min := int64(4)
	s.addProduct("p2", &min)
	s.setStock("p2", "sucursal-A", 6)
	wf := newWorkflow(s)
	ctx := context.Background()

	tr, err := wf.Create(ctx, "gerente", "sucursal-B", []dto.TransferItemRequest{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)

	result, err := wf.Compare(ctx, tr.ID, "sucursal-A")
	require.NoError(t, err)
	assert.True(t, result.Feasible)
	require.Len(t, result.Items, 2)

	// p1: 10 → 5 en origen, 0 → 5 en destino, sin umbral.
	assert.Equal(t, int64(5), result.Items[0].OriginAfter)
	assert.Equal(t, int64(5), result.Items[0].DestAfter)
	assert.False(t, result.Items[0].OriginLow)

	// p2: 6 → 3 queda bajo el umbral 4 en el origen.
	assert.Equal(t, int64(3), result.Items[1].OriginAfter)
	assert.True(t, result.Items[1].OriginLow)
	assert.True(t, result.Items[1].DestLow, "3 en destino también queda bajo el umbral")

	// La simulación no tocó el stock real.
	assert.Equal(t, int64(10), s.stockQty("p1", "sucursal-A"))
	assert.Equal(t, int64(6), s.stockQty("p2", "sucursal-A"))
}

func TestWorkflow_CompareNoFactible(t *testing.T) {
	s := baseStore()
	s.addProduct("p3", nil) // sin entrada de stock en ninguna sucursal
	wf := newWorkflow(s)
	ctx := context.Background()

	tr, err := wf.Create(ctx, "gerente", "sucursal-B", []dto.TransferItemRequest{
		{ProductID: "p1", Quantity: 99}, // más de lo disponible
		{ProductID: "p3", Quantity: 1},  // sin entrada en el origen
	})
	require.NoError(t, err)

	result, err := wf.Compare(ctx, tr.ID, "sucursal-A")
	require.NoError(t, err)
	assert.False(t, result.Feasible)
	assert.False(t, result.Items[0].Feasible, "debitar 99 de 10 deja negativo")
	assert.Equal(t, int64(-89), result.Items[0].OriginAfter)
	assert.True(t, result.Items[1].OriginMissing, "p3 no tiene entrada en el origen")
	assert.False(t, result.Items[1].Feasible)
}

func TestWorkflow_CompareOrigenIgualDestino(t *testing.T) {
	s := baseStore()
	wf := newWorkflow(s)

	tr := createTransfer(t, wf, 1)
	_, err := wf.Compare(context.Background(), tr.ID, "sucursal-B")
	assert.ErrorIs(t, err, domain.ErrSameBranch)
}

func TestWorkflow_DeleteSolicitada(t *testing.T) {
	s := baseStore()
	wf := newWorkflow(s)
	ctx := context.Background()

	tr := createTransfer(t, wf, 2)
	require.NoError(t, wf.Delete(ctx, "gerente", tr.ID))

	_, err := wf.Get(ctx, tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
