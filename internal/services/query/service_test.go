package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/klfajardo/registro-evento-chile/internal/dependencies/mocks"
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
	"github.com/klfajardo/registro-evento-chile/internal/storage/memory"
	"github.com/klfajardo/registro-evento-chile/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	memory  *memory.Storage
	store   *mocks.FlakyStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.memory = memory.New()
	s.store = mocks.NewFlakyStore(s.memory)
	s.service = New(s.store, 50*time.Millisecond, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) addAttendee(f model.Fields) {
	_, err := s.memory.Create(s.ctx, model.CollectionAttendees, model.Normalize(f).Record())
	s.Require().NoError(err)
}

func (s *ServiceSuite) addAccess(session string) {
	fields := storage.Fields{model.KeyUUID: "u"}
	if session != "" {
		fields[model.KeySessionID] = session
	}
	_, err := s.memory.Create(s.ctx, model.CollectionAccess, fields)
	s.Require().NoError(err)
}

func person(uuid, first, last string) model.Fields {
	return model.Fields{
		UUID:       model.Text(uuid),
		DNI:        model.Text("dni-" + uuid),
		FirstNames: model.Text(first),
		LastNames:  model.Text(last),
		Email:      model.Text(uuid + "@example.cl"),
	}
}

// Get tests

func (s *ServiceSuite) TestGetReturnsAttendee() {
	s.addAttendee(person("u-1", "Ana", "Rojas"))

	a, err := s.service.Get(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("Ana", a.FirstNames)
	s.Equal(model.PaymentUnpaid, a.PaymentStatus)
}

func (s *ServiceSuite) TestGetIsExact() {
	s.addAttendee(person("U-1", "Ana", "Rojas"))

	_, err := s.service.Get(s.ctx, "u-1")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestGetTimesOut() {
	s.addAttendee(person("u-1", "Ana", "Rojas"))
	s.store.SetDelay(time.Second)

	start := time.Now()
	_, err := s.service.Get(s.ctx, "u-1")
	s.ErrorIs(err, model.ErrTimeout)
	s.Less(time.Since(start), 500*time.Millisecond)
}

func (s *ServiceSuite) TestGetStoreDown() {
	s.store.SetDown(true)

	_, err := s.service.Get(s.ctx, "u-1")
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

// Search tests

func (s *ServiceSuite) TestSearchRequiresQuery() {
	_, err := s.service.Search(s.ctx, SearchByName, "  ")
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ServiceSuite) TestParseSearchMode() {
	s.Equal(SearchByName, ParseSearchMode("NOMBRE"))
	s.Equal(SearchByEmail, ParseSearchMode("correo"))
	s.Equal(SearchByUUID, ParseSearchMode("telefono"))
	s.Equal(SearchByUUID, ParseSearchMode(""))
}

func (s *ServiceSuite) TestSearchByUUID() {
	s.addAttendee(person("u-1", "Ana", "Rojas"))

	results, err := s.service.Search(s.ctx, SearchByUUID, "u-1")
	s.Require().NoError(err)
	s.Len(results, 1)

	results, err = s.service.Search(s.ctx, SearchByUUID, "u-2")
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *ServiceSuite) TestSearchByNameIgnoresDiacriticsAndSorts() {
	s.addAttendee(person("u-1", "José", "Zúñiga"))
	s.addAttendee(person("u-2", "Josefa", "Álvarez"))
	s.addAttendee(person("u-3", "María", "Pérez"))
	s.addAttendee(person("u-4", "Jose Luis", "Muñoz"))

	results, err := s.service.Search(s.ctx, SearchByName, "JOSE")
	s.Require().NoError(err)
	s.Require().Len(results, 3)
	s.Equal("u-2", results[0].UUID)
	s.Equal("u-4", results[1].UUID)
	s.Equal("u-1", results[2].UUID)
}

func (s *ServiceSuite) TestSearchByNameMatchesFullName() {
	s.addAttendee(person("u-1", "Ana", "Rojas"))

	results, err := s.service.Search(s.ctx, SearchByName, "ana roj")
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *ServiceSuite) TestSearchByDNIAndEmailAreSubstrings() {
	s.addAttendee(person("u-1", "Ana", "Rojas"))
	s.addAttendee(person("u-2", "Luis", "Soto"))

	results, err := s.service.Search(s.ctx, SearchByDNI, "DNI-U-2")
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("u-2", results[0].UUID)

	results, err = s.service.Search(s.ctx, SearchByEmail, "@example")
	s.Require().NoError(err)
	s.Len(results, 2)
}

func (s *ServiceSuite) TestSearchIsCapped() {
	for i := range MaxSearchResults + 10 {
		s.addAttendee(person(fmt.Sprintf("u-%03d", i), "Ana", fmt.Sprintf("Apellido %03d", i)))
	}

	results, err := s.service.Search(s.ctx, SearchByName, "ana")
	s.Require().NoError(err)
	s.Len(results, MaxSearchResults)
	s.Equal("u-000", results[0].UUID)
}

func (s *ServiceSuite) TestSearchStoreDown() {
	s.store.SetDown(true)

	_, err := s.service.Search(s.ctx, SearchByName, "ana")
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

// Dashboard tests

func (s *ServiceSuite) TestDashboardCounts() {
	paid := model.PaymentPaid
	printed := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	s.addAttendee(person("u-1", "Ana", "Rojas"))
	p2 := person("u-2", "Luis", "Soto")
	p2.PaymentStatus = &paid
	s.addAttendee(p2)
	p3 := person("u-3", "Eva", "Paz")
	p3.PaymentStatus = &paid
	p3.PrintedAt = &printed
	s.addAttendee(p3)

	s.addAccess("s1")
	s.addAccess("s1")
	s.addAccess("s2")
	s.addAccess("")

	d, err := s.service.Dashboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(&Dashboard{
		Total:     3,
		Paid:      2,
		Printed:   1,
		BySession: map[string]int{"s1": 2, "s2": 1, model.UnknownSession: 1},
	}, d)
}

func (s *ServiceSuite) TestDashboardEmpty() {
	d, err := s.service.Dashboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, d.Total)
	s.Empty(d.BySession)
}

func (s *ServiceSuite) TestDashboardStoreDown() {
	s.store.FailOps("listAll")

	_, err := s.service.Dashboard(s.ctx)
	s.ErrorIs(err, model.ErrStoreUnavailable)
}
