package repositories

import (
	"context"
	"testing"
	"time"

	"estoquehub/internal/common"
	"estoquehub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MaletaRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      MaletaRepository
	usuarioID uuid.UUID
	criadoPor uuid.UUID
	context   context.Context
}

func (suite *MaletaRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewMaletaRepo(mock)
	suite.usuarioID = uuid.New()
	suite.criadoPor = uuid.New()
	suite.context = context.Background()
}

func (suite *MaletaRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestMaletaRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MaletaRepoTestSuite))
}

func (suite *MaletaRepoTestSuite) newMaleta() *models.Maleta {
	return &models.Maleta{
		ID:                    uuid.New(),
		UsuarioID:             suite.usuarioID,
		DataPrevistaDevolucao: time.Now().Add(7 * 24 * time.Hour),
		CriadoPor:             suite.criadoPor,
	}
}

func (suite *MaletaRepoTestSuite) TestCreateWithItens_SingleLine() {
	maleta := suite.newMaleta()
	itemID := uuid.New()
	itens := []models.MaletaItemInput{{ItemID: itemID, Quantidade: 2}}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO maletas`).
		WithArgs(maleta.ID, maleta.UsuarioID, maleta.DataPrevistaDevolucao, models.MaletaAberta, maleta.Observacoes, maleta.CriadoPor).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT quantity, active FROM items WHERE id = \$1 FOR UPDATE`).
		WithArgs(itemID).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "active"}).AddRow(5, true))
	suite.mock.ExpectExec(`UPDATE items SET quantity = quantity - \$1`).
		WithArgs(2, itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO maleta_itens`).
		WithArgs(pgxmock.AnyArg(), maleta.ID, itemID, 2, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItens(suite.context, maleta, itens)
	assert.NoError(suite.T(), err)
}

func (suite *MaletaRepoTestSuite) TestCreateWithItens_SecondLineShortRollsBackAll() {
	maleta := suite.newMaleta()

	// Fixed ids so the ascending lock order is deterministic.
	itemA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	itemB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	itens := []models.MaletaItemInput{
		{ItemID: itemA, Quantidade: 1},
		{ItemID: itemB, Quantidade: 10},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO maletas`).
		WithArgs(maleta.ID, maleta.UsuarioID, maleta.DataPrevistaDevolucao, models.MaletaAberta, maleta.Observacoes, maleta.CriadoPor).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT quantity, active FROM items WHERE id = \$1 FOR UPDATE`).
		WithArgs(itemA).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "active"}).AddRow(5, true))
	suite.mock.ExpectExec(`UPDATE items SET quantity = quantity - \$1`).
		WithArgs(1, itemA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT quantity, active FROM items WHERE id = \$1 FOR UPDATE`).
		WithArgs(itemB).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "active"}).AddRow(4, true))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItens(suite.context, maleta, itens)
	assert.True(suite.T(), common.IsInsufficientStock(err))
	assert.Contains(suite.T(), err.Error(), "available 4")
}

func (suite *MaletaRepoTestSuite) TestCreateWithItens_LocksInAscendingIDOrder() {
	maleta := suite.newMaleta()

	first := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	second := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	// Input deliberately out of order; locks must still go ascending.
	itens := []models.MaletaItemInput{
		{ItemID: second, Quantidade: 1},
		{ItemID: first, Quantidade: 1},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO maletas`).
		WithArgs(maleta.ID, maleta.UsuarioID, maleta.DataPrevistaDevolucao, models.MaletaAberta, maleta.Observacoes, maleta.CriadoPor).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectQuery(`SELECT quantity, active FROM items WHERE id = \$1 FOR UPDATE`).
		WithArgs(first).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "active"}).AddRow(5, true))
	suite.mock.ExpectExec(`UPDATE items SET quantity = quantity - \$1`).
		WithArgs(1, first).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT quantity, active FROM items WHERE id = \$1 FOR UPDATE`).
		WithArgs(second).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "active"}).AddRow(5, true))
	suite.mock.ExpectExec(`UPDATE items SET quantity = quantity - \$1`).
		WithArgs(1, second).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Lines insert in input order.
	suite.mock.ExpectExec(`INSERT INTO maleta_itens`).
		WithArgs(pgxmock.AnyArg(), maleta.ID, second, 1, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO maleta_itens`).
		WithArgs(pgxmock.AnyArg(), maleta.ID, first, 1, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItens(suite.context, maleta, itens)
	assert.NoError(suite.T(), err)
}

func (suite *MaletaRepoTestSuite) TestReturn_RestoresStockAndMarksDevolvida() {
	maletaID := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM maletas WHERE id = \$1 FOR UPDATE`).
		WithArgs(maletaID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.MaletaAberta))
	suite.mock.ExpectQuery(`SELECT item_id, quantidade FROM maleta_itens WHERE maleta_id = \$1`).
		WithArgs(maletaID).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "quantidade"}).
			AddRow(itemA, 2).
			AddRow(itemB, 1))
	suite.mock.ExpectExec(`UPDATE items SET quantity = quantity \+ \$1`).
		WithArgs(2, itemA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE items SET quantity = quantity \+ \$1`).
		WithArgs(1, itemB).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE maletas SET status = \$1, data_devolucao = NOW\(\)`).
		WithArgs(models.MaletaDevolvida, maletaID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Return(suite.context, maletaID)
	assert.NoError(suite.T(), err)
}

func (suite *MaletaRepoTestSuite) TestReturn_AtrasadaIsReturnable() {
	maletaID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM maletas WHERE id = \$1 FOR UPDATE`).
		WithArgs(maletaID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.MaletaAtrasada))
	suite.mock.ExpectQuery(`SELECT item_id, quantidade FROM maleta_itens WHERE maleta_id = \$1`).
		WithArgs(maletaID).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "quantidade"}))
	suite.mock.ExpectExec(`UPDATE maletas SET status = \$1, data_devolucao = NOW\(\)`).
		WithArgs(models.MaletaDevolvida, maletaID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Return(suite.context, maletaID)
	assert.NoError(suite.T(), err)
}

func (suite *MaletaRepoTestSuite) TestReturn_AlreadyDevolvidaFails() {
	maletaID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM maletas WHERE id = \$1 FOR UPDATE`).
		WithArgs(maletaID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.MaletaDevolvida))
	suite.mock.ExpectRollback()

	err := suite.repo.Return(suite.context, maletaID)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *MaletaRepoTestSuite) TestReturn_NotFound() {
	maletaID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM maletas WHERE id = \$1 FOR UPDATE`).
		WithArgs(maletaID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}))
	suite.mock.ExpectRollback()

	err := suite.repo.Return(suite.context, maletaID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *MaletaRepoTestSuite) TestMarkOverdue_ReportsAffectedRows() {
	suite.mock.ExpectExec(`UPDATE maletas`).
		WithArgs(models.MaletaAtrasada, models.MaletaAberta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	updated, err := suite.repo.MarkOverdue(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), updated)
}

func (suite *MaletaRepoTestSuite) TestMarkOverdue_SecondRunIsNoop() {
	suite.mock.ExpectExec(`UPDATE maletas`).
		WithArgs(models.MaletaAtrasada, models.MaletaAberta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	suite.mock.ExpectExec(`UPDATE maletas`).
		WithArgs(models.MaletaAtrasada, models.MaletaAberta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	first, err := suite.repo.MarkOverdue(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), first)

	second, err := suite.repo.MarkOverdue(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), second)
}

func (suite *MaletaRepoTestSuite) TestStats() {
	suite.mock.ExpectQuery(`SELECT`).
		WithArgs(models.MaletaAberta, models.MaletaAtrasada).
		WillReturnRows(pgxmock.NewRows([]string{"abertas", "atrasadas"}).AddRow(4, 2))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(mi\.quantidade\), 0\)`).
		WithArgs(models.MaletaAberta, models.MaletaAtrasada).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(17))

	stats, err := suite.repo.Stats(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, stats.Abertas)
	assert.Equal(suite.T(), 2, stats.Atrasadas)
	assert.Equal(suite.T(), 17, stats.ItensEmprestados)
}
