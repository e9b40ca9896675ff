package gorm

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

type DocumentStoreSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *DocumentStore
}

func (s *DocumentStoreSuite) SetupTest() {
	var (
		db  *sql.DB
		err error
	)

	db, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(s.T(), err)

	s.store = NewDocumentStore(gormDB)
}

func (s *DocumentStoreSuite) AfterTest(_, _ string) {
	require.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func TestDocumentStore(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) TestFindOne() {
	rows := sqlmock.NewRows([]string{"id", "body"}).
		AddRow("abc", []byte(`{"username":"doge","password":"$2a$12$x"}`))
	s.mock.ExpectQuery(`SELECT id, body FROM documents WHERE bucket = \$1 AND id = \$2`).
		WithArgs("User", "abc").
		WillReturnRows(rows)

	rec, err := s.store.FindOne("User", "abc")
	s.Require().NoError(err)
	s.Equal("abc", rec.ID)
	s.Equal("doge", rec.Fields["username"])
}

func (s *DocumentStoreSuite) TestFindOne_NotFound() {
	s.mock.ExpectQuery(`SELECT id, body FROM documents`).
		WithArgs("User", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}))

	_, err := s.store.FindOne("User", "missing")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *DocumentStoreSuite) TestFindOne_BackendError() {
	s.mock.ExpectQuery(`SELECT id, body FROM documents`).
		WillReturnError(sql.ErrConnDone)

	_, err := s.store.FindOne("User", "abc")
	s.Error(err)
	s.False(errors.Is(err, store.ErrNotFound))
}

func (s *DocumentStoreSuite) TestFind() {
	rows := sqlmock.NewRows([]string{"id", "body"}).
		AddRow("t1", []byte(`{"name":"a","owner":"doge"}`)).
		AddRow("t2", []byte(`{"name":"b","owner":"doge"}`))
	s.mock.ExpectQuery(`SELECT id, body FROM documents WHERE bucket = \$1 AND body @> \$2::jsonb AND body -> \$3 = \$4::jsonb ORDER BY created_at, id`).
		WithArgs("Trip", `{"owner":"doge"}`, "owner", `"doge"`).
		WillReturnRows(rows)

	recs, err := s.store.Find("Trip", store.Fields{"owner": "doge"})
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal("t1", recs[0].ID)
	s.Equal("b", recs[1].Fields["name"])
}

func (s *DocumentStoreSuite) TestFind_EmptyQueryMatchesAll() {
	s.mock.ExpectQuery(`SELECT id, body FROM documents WHERE bucket = \$1 AND body @> \$2::jsonb ORDER BY created_at, id`).
		WithArgs("Trip", `{}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}))

	recs, err := s.store.Find("Trip", nil)
	s.Require().NoError(err)
	s.NotNil(recs)
	s.Empty(recs)
}

func (s *DocumentStoreSuite) TestFind_ComparesEachFieldExactly() {
	s.mock.ExpectQuery(
		`SELECT id, body FROM documents WHERE bucket = \$1 AND body @> \$2::jsonb ` +
			`AND body -> \$3 = \$4::jsonb AND body -> \$5 = \$6::jsonb ORDER BY created_at, id`,
	).
		WithArgs("Trip", `{"owner":"doge","waypoints":[]}`, "owner", `"doge"`, "waypoints", `[]`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}).
			AddRow("t3", []byte(`{"owner":"doge","waypoints":[]}`)))

	recs, err := s.store.Find("Trip", store.Fields{"waypoints": []interface{}{}, "owner": "doge"})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("t3", recs[0].ID)
}

func (s *DocumentStoreSuite) TestFind_NestedObjectIsComparedWhole() {
	s.mock.ExpectQuery(`AND body -> \$3 = \$4::jsonb ORDER BY created_at, id`).
		WithArgs("Trip", `{"meta":{"x":1}}`, "meta", `{"x":1}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}))

	recs, err := s.store.Find("Trip", store.Fields{"meta": map[string]interface{}{"x": 1}})
	s.Require().NoError(err)
	s.Empty(recs)
}

func (s *DocumentStoreSuite) TestInsert() {
	s.mock.ExpectExec(`INSERT INTO documents \(id, bucket, body\) VALUES \(\$1, \$2, \$3::jsonb\)`).
		WithArgs(sqlmock.AnyArg(), "User", `{"username":"doge"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.store.Insert("User", store.Fields{"username": "doge"})
	s.Require().NoError(err)
	s.Len(id, 36)
}

func (s *DocumentStoreSuite) TestReplace() {
	s.mock.ExpectExec(`UPDATE documents SET body = \$1::jsonb, updated_at = now\(\) WHERE bucket = \$2 AND id = \$3`).
		WithArgs(`{"name":"new"}`, "Trip", "t1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s.NoError(s.store.Replace("Trip", "t1", store.Fields{"name": "new"}))
}

func (s *DocumentStoreSuite) TestDelete() {
	s.mock.ExpectExec(`DELETE FROM documents WHERE bucket = \$1 AND id = \$2`).
		WithArgs("Trip", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`DELETE FROM documents`).
		WithArgs("Trip", "t1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := s.store.Delete("Trip", "t1")
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.store.Delete("Trip", "t1")
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *DocumentStoreSuite) TestCheckConnectivity() {
	s.mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))

	h := NewHealthStore(s.store.db)
	s.NoError(h.CheckConnectivity())
}
