package models

import (
	"time"

	"github.com/google/uuid"
)

// Maleta status values. A maleta moves aberta -> devolvida, or
// aberta -> atrasada -> devolvida. Devolvida is terminal; atrasada is only
// ever set by the overdue sweep, never directly by a user action.
const (
	MaletaAberta    = "aberta"
	MaletaDevolvida = "devolvida"
	MaletaAtrasada  = "atrasada"
)

// Maleta is a bundle of items checked out to a custodian for a bounded
// period. Creating one withdraws stock for every line; returning it restores
// the stock and closes the maleta.
type Maleta struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	UsuarioID             uuid.UUID     `json:"usuario_id" db:"usuario_id"`
	DataEmprestimo        time.Time     `json:"data_emprestimo" db:"data_emprestimo"`
	DataPrevistaDevolucao time.Time     `json:"data_prevista_devolucao" db:"data_prevista_devolucao"`
	DataDevolucao         *time.Time    `json:"data_devolucao" db:"data_devolucao"`
	Status                string        `json:"status" db:"status"`
	Observacoes           *string       `json:"observacoes" db:"observacoes"`
	CriadoPor             uuid.UUID     `json:"criado_por" db:"criado_por"`
	CreatedAt             time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at" db:"updated_at"`
	UsuarioNome           string        `json:"usuario_nome,omitempty" db:"-"`
	UsuarioEmail          string        `json:"usuario_email,omitempty" db:"-"`
	CriadoPorNome         string        `json:"criado_por_nome,omitempty" db:"-"`
	Itens                 []*MaletaItem `json:"itens,omitempty" db:"-"`
}

// MaletaItem is one item-and-quantity line inside a maleta. Immutable after
// creation; only a whole-maleta return releases the held quantity.
type MaletaItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	MaletaID    uuid.UUID `json:"maleta_id" db:"maleta_id"`
	ItemID      uuid.UUID `json:"item_id" db:"item_id"`
	Quantidade  int       `json:"quantidade" db:"quantidade"`
	NumeroSerie *string   `json:"numero_serie" db:"numero_serie"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ItemNome    string    `json:"item_nome,omitempty" db:"-"`
	ItemBarcode string    `json:"item_barcode,omitempty" db:"-"`
	ItemBrand   string    `json:"item_brand,omitempty" db:"-"`
	ItemModel   string    `json:"item_model,omitempty" db:"-"`
}

// MaletaItemInput is one requested line at maleta-creation time.
type MaletaItemInput struct {
	ItemID      uuid.UUID `json:"item_id"`
	Quantidade  int       `json:"quantidade"`
	NumeroSerie *string   `json:"numero_serie,omitempty"`
}

// MaletaStats summarizes maletas for the dashboard.
type MaletaStats struct {
	Abertas          int `json:"abertas"`
	Atrasadas        int `json:"atrasadas"`
	ItensEmprestados int `json:"itensEmprestados"`
}
