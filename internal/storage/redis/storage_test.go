package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestCreateAndFindByIndexedField() {
	rec, err := s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "AB12", "uuid": "u-1"})
	s.Require().NoError(err)
	s.NotEmpty(rec.ID)

	found, err := s.storage.FindOne(s.ctx, "asistentes", storage.EqualsFold("dni", "ab12"))
	s.Require().NoError(err)
	s.Equal(rec.ID, found.ID)
	s.Equal("u-1", found.Fields["uuid"])

	// Index entry is case-folded
	s.True(s.mini.Exists(fieldIndexKey("asistentes", "dni", "ab12")))
}

func (s *StorageSuite) TestFindOneExactMatchChecksCase() {
	_, _ = s.storage.Create(s.ctx, "asistentes", storage.Fields{"uuid": "ABC"})

	_, err := s.storage.FindOne(s.ctx, "asistentes", storage.Equals("uuid", "abc"))
	s.ErrorIs(err, model.ErrNotFound)

	found, err := s.storage.FindOne(s.ctx, "asistentes", storage.Equals("uuid", "ABC"))
	s.Require().NoError(err)
	s.Equal("ABC", found.Fields["uuid"])
}

func (s *StorageSuite) TestFindOneOnUnindexedFieldScans() {
	_, _ = s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "1", "correo": "a@b.cl"})

	found, err := s.storage.FindOne(s.ctx, "asistentes", storage.EqualsFold("correo", "A@B.CL"))
	s.Require().NoError(err)
	s.Equal("1", found.Fields["dni"])
}

func (s *StorageSuite) TestUpdateMovesIndexEntry() {
	rec, _ := s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "1", "nombres": "Ana"})

	updated, err := s.storage.Update(s.ctx, "asistentes", rec.ID, storage.Fields{"dni": "2"})
	s.Require().NoError(err)
	s.Equal("Ana", updated.Fields["nombres"])

	_, err = s.storage.FindOne(s.ctx, "asistentes", storage.EqualsFold("dni", "1"))
	s.ErrorIs(err, model.ErrNotFound)

	found, err := s.storage.FindOne(s.ctx, "asistentes", storage.EqualsFold("dni", "2"))
	s.Require().NoError(err)
	s.Equal(rec.ID, found.ID)
}

func (s *StorageSuite) TestUpdateMissingRecord() {
	_, err := s.storage.Update(s.ctx, "asistentes", "rec999999", storage.Fields{"dni": "2"})
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestListAllInCreationOrder() {
	_, _ = s.storage.Create(s.ctx, "accesos", storage.Fields{"session_id": "s1", "sede": "a"})
	_, _ = s.storage.Create(s.ctx, "accesos", storage.Fields{"session_id": "s2", "sede": "b"})

	recs, err := s.storage.ListAll(s.ctx, "accesos", "session_id")
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(storage.Fields{"session_id": "s1"}, recs[0].Fields)
	s.Equal(storage.Fields{"session_id": "s2"}, recs[1].Fields)
}

func (s *StorageSuite) TestListAllEmptyCollection() {
	recs, err := s.storage.ListAll(s.ctx, "accesos")
	s.Require().NoError(err)
	s.Empty(recs)
}

func (s *StorageSuite) TestServerDownIsUnavailable() {
	s.mini.Close()

	_, err := s.storage.FindOne(s.ctx, "asistentes", storage.EqualsFold("dni", "1"))
	s.ErrorIs(err, model.ErrStoreUnavailable)

	_, err = s.storage.Create(s.ctx, "asistentes", storage.Fields{"dni": "1"})
	s.ErrorIs(err, model.ErrStoreUnavailable)

	_, err = s.storage.ListAll(s.ctx, "asistentes")
	s.ErrorIs(err, model.ErrStoreUnavailable)
}
