package transfer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/transfer"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func requestedTransfer() entity.Transfer {
	return entity.Transfer{
		ID:           "t1",
		DestBranchID: "sucursal-B",
		State:        entity.TransferRequested,
		Modifiable:   true,
		Items: []entity.TransferItem{
			{TransferID: "t1", ProductID: "p1", Quantity: 5},
			{TransferID: "t1", ProductID: "p2", Quantity: 3},
		},
	}
}

func TestSend_TransicionValida(t *testing.T) {
	updated, cmds, err := transfer.Send(requestedTransfer(), "sucursal-A", testNow)
	require.NoError(t, err)

	assert.Equal(t, entity.TransferSent, updated.State)
	assert.False(t, updated.Modifiable, "tras el envío la lista de ítems se congela")
	assert.Equal(t, "sucursal-A", updated.OriginBranchID)
	require.NotNil(t, updated.DepartedAt)
	assert.Equal(t, testNow, *updated.DepartedAt)

	// Un débito por ítem, todos en el origen.
	require.Len(t, cmds, 2)
	assert.Equal(t, transfer.StockCommand{ProductID: "p1", BranchID: "sucursal-A", Delta: -5}, cmds[0])
	assert.Equal(t, transfer.StockCommand{ProductID: "p2", BranchID: "sucursal-A", Delta: -3}, cmds[1])
}

func TestSend_EstadosInvalidos(t *testing.T) {
	sent := requestedTransfer()
	sent.State = entity.TransferSent
	sent.Modifiable = false
	_, _, err := transfer.Send(sent, "sucursal-A", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "ENVIADA no se puede volver a enviar")

	received := requestedTransfer()
	received.State = entity.TransferReceived
	_, _, err = transfer.Send(received, "sucursal-A", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	frozen := requestedTransfer()
	frozen.Modifiable = false
	_, _, err = transfer.Send(frozen, "sucursal-A", testNow)
	assert.ErrorIs(t, err, domain.ErrNotModifiable)
}

func TestSend_OrigenIgualDestino(t *testing.T) {
	_, _, err := transfer.Send(requestedTransfer(), "sucursal-B", testNow)
	assert.ErrorIs(t, err, domain.ErrSameBranch)
}

func TestSend_SinItemsNiOrigen(t *testing.T) {
	empty := requestedTransfer()
	empty.Items = nil
	_, _, err := transfer.Send(empty, "sucursal-A", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = transfer.Send(requestedTransfer(), "", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceive_TransicionValida(t *testing.T) {
	sent, _, err := transfer.Send(requestedTransfer(), "sucursal-A", testNow)
	require.NoError(t, err)

	arrived := testNow.Add(48 * time.Hour)
	updated, cmds, err := transfer.Receive(sent, arrived)
	require.NoError(t, err)

	assert.Equal(t, entity.TransferReceived, updated.State)
	require.NotNil(t, updated.ArrivedAt)
	assert.Equal(t, arrived, *updated.ArrivedAt)
	assert.Equal(t, "sucursal-A", updated.OriginBranchID, "el origen queda registrado")

	// Créditos en el destino, mismas cantidades.
	require.Len(t, cmds, 2)
	assert.Equal(t, transfer.StockCommand{ProductID: "p1", BranchID: "sucursal-B", Delta: 5}, cmds[0])
	assert.Equal(t, transfer.StockCommand{ProductID: "p2", BranchID: "sucursal-B", Delta: 3}, cmds[1])
}

func TestReceive_SoloDesdeEnviada(t *testing.T) {
	_, _, err := transfer.Receive(requestedTransfer(), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "SOLICITADA no se puede recibir")

	received := requestedTransfer()
	received.State = entity.TransferReceived
	_, _, err = transfer.Receive(received, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "recibir dos veces no duplica stock")
}

func TestCancel_RevierteEnvio(t *testing.T) {
	sent, _, err := transfer.Send(requestedTransfer(), "sucursal-A", testNow)
	require.NoError(t, err)

	updated, cmds, err := transfer.Cancel(sent, testNow.Add(time.Hour))
	require.NoError(t, err)

	// Regresa a SOLICITADA editable, con origen y fechas limpios.
	assert.Equal(t, entity.TransferRequested, updated.State)
	assert.True(t, updated.Modifiable)
	assert.Empty(t, updated.OriginBranchID)
	assert.Nil(t, updated.DepartedAt)
	assert.Nil(t, updated.ArrivedAt)

	// El stock vuelve al origen original.
	require.Len(t, cmds, 2)
	assert.Equal(t, transfer.StockCommand{ProductID: "p1", BranchID: "sucursal-A", Delta: 5}, cmds[0])
	assert.Equal(t, transfer.StockCommand{ProductID: "p2", BranchID: "sucursal-A", Delta: 3}, cmds[1])
}

func TestCancel_EstadosInvalidos(t *testing.T) {
	_, _, err := transfer.Cancel(requestedTransfer(), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una transferencia nunca enviada no se cancela")

	received := requestedTransfer()
	received.State = entity.TransferReceived
	received.OriginBranchID = "sucursal-A"
	_, _, err = transfer.Cancel(received, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una transferencia recibida no se puede revertir")
}

func TestValidateItems(t *testing.T) {
	existing := []entity.TransferItem{{ProductID: "p1", Quantity: 2}}

	err := transfer.ValidateItems(existing, []entity.TransferItem{{ProductID: "p2", Quantity: 1}})
	assert.NoError(t, err)

	err = transfer.ValidateItems(existing, []entity.TransferItem{{ProductID: "p1", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct, "un producto no puede repetirse en la transferencia")

	err = transfer.ValidateItems(nil, []entity.TransferItem{
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p2", Quantity: 4},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct, "duplicado dentro del mismo lote entrante")

	err = transfer.ValidateItems(nil, []entity.TransferItem{{ProductID: "p3", Quantity: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero es inválida")

	err = transfer.ValidateItems(nil, []entity.TransferItem{{ProductID: "", Quantity: 3}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
