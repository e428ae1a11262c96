package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestCreateAssignsHandle() {
	rec, err := s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "123"})
	s.Require().NoError(err)

	s.NotEmpty(rec.ID)
	s.Equal("123", rec.Fields["dni"])
	s.Equal(1, s.storage.Count("asistentes"))
}

func (s *StorageSuite) TestFindOneCaseInsensitive() {
	_, _ = s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "AB12"})

	rec, err := s.storage.FindOne(s.ctx, "asistentes", storage.EqualsFold("dni", "ab12"))
	s.Require().NoError(err)
	s.Equal("AB12", rec.Fields["dni"])

	_, err = s.storage.FindOne(s.ctx, "asistentes", storage.Equals("dni", "ab12"))
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestFindOneUnknownCollection() {
	_, err := s.storage.FindOne(s.ctx, "nope", storage.Equals("uuid", "x"))
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestUpdateMergesFields() {
	rec, _ := s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "1", "nombres": "Ana"})

	updated, err := s.storage.Update(s.ctx, "asistentes", rec.ID, storage.Fields{"estado_pago": "PAGADO"})
	s.Require().NoError(err)

	s.Equal("Ana", updated.Fields["nombres"])
	s.Equal("PAGADO", updated.Fields["estado_pago"])
}

func (s *StorageSuite) TestUpdateUnknownRecord() {
	_, _ = s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "1"})

	_, err := s.storage.Update(s.ctx, "asistentes", "missing", storage.Fields{"dni": "2"})
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestListAllProjectsAndKeepsOrder() {
	_, _ = s.storage.Create(s.ctx, "accesos", storage.Fields{"session_id": "s1", "sede": "a"})
	_, _ = s.storage.Create(s.ctx, "accesos", storage.Fields{"session_id": "s2", "sede": "b"})

	recs, err := s.storage.ListAll(s.ctx, "accesos", "session_id")
	s.Require().NoError(err)

	s.Require().Len(recs, 2)
	s.Equal(storage.Fields{"session_id": "s1"}, recs[0].Fields)
	s.Equal(storage.Fields{"session_id": "s2"}, recs[1].Fields)
}

func (s *StorageSuite) TestReturnedRecordsAreCopies() {
	rec, _ := s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "1"})
	rec.Fields["dni"] = "mutated"

	found, err := s.storage.FindOne(s.ctx, "asistentes", storage.Equals("dni", "1"))
	s.Require().NoError(err)
	s.Equal(rec.ID, found.ID)
}
