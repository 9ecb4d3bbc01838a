package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"propsearch/server/internal/models"
	"propsearch/server/internal/pricing"
)

// MockPusher is a mock implementation of Pusher
type MockPusher struct {
	mock.Mock
	batches []*models.ImportBatch
}

func (m *MockPusher) PushWait(ctx context.Context, batch *models.ImportBatch) error {
	args := m.Called(ctx, batch)
	if args.Error(0) == nil {
		m.batches = append(m.batches, batch)
	}
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

const document = `{
	"properties": [
		{"property_id": 1, "title": " Casa Golf ", "zona": "Cariló", "barrio": "Cariló Golf"},
		{"property_id": 2, "title": "Depto Centro", "zona": "Pinamar", "fts": "precomputed"},
		{"property_id": 0, "title": "sin id"}
	],
	"periods": [
		{"property_id": 1, "period_name": "Navidad", "price": "$5.300", "status": "Disponible"},
		{"property_id": 1, "period_name": "Carnaval", "price": 4000, "status": " disponible "},
		{"property_id": 1, "period_name": "Enero", "price": "$9.000", "status": "Reservada"},
		{"property_id": 2, "period_name": "Navidad", "price": null, "status": "Disponible"},
		{"property_id": 9, "period_name": "Navidad", "price": "1", "status": "Disponible"}
	]
}`

func TestDecode_PriceAsTextOrNumber(t *testing.T) {
	feed, err := Decode(strings.NewReader(document))
	require.NoError(t, err)
	require.Len(t, feed.Periods, 5)
	assert.Equal(t, PriceText("$5.300"), feed.Periods[0].Price)
	assert.Equal(t, PriceText("4000"), feed.Periods[1].Price)
	assert.Equal(t, PriceText(""), feed.Periods[3].Price)

	_, err = Decode(strings.NewReader(`{"periods": [{"price": true}]}`))
	assert.Error(t, err)
}

func TestDecode_FractionalPriceIsTruncated(t *testing.T) {
	feed, err := Decode(strings.NewReader(`{"periods": [
		{"property_id": 1, "period_name": "Enero", "price": 5300.5, "status": "Disponible"},
		{"property_id": 1, "period_name": "Febrero", "price": 4000.99, "status": "Disponible"},
		{"property_id": 1, "period_name": "Marzo", "price": 1e3, "status": "Disponible"}
	]}`))
	require.NoError(t, err)
	require.Len(t, feed.Periods, 3)

	assert.Equal(t, PriceText("5300"), feed.Periods[0].Price)
	assert.Equal(t, PriceText("4000"), feed.Periods[1].Price)
	assert.Equal(t, PriceText("1000"), feed.Periods[2].Price)
	assert.Equal(t, int64(5300), pricing.ParseAmount(string(feed.Periods[0].Price)))
}

func TestNormalize(t *testing.T) {
	feed, err := Decode(strings.NewReader(document))
	require.NoError(t, err)

	props, periods, sum := Normalize(feed)

	require.Len(t, props, 2)
	assert.Equal(t, "Casa Golf", props[0].Title)
	assert.Equal(t, "casa golf cariló golf cariló", props[0].FTS)
	assert.Equal(t, "precomputed", props[1].FTS)

	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = p.PeriodName
		assert.Equal(t, "Disponible", p.Status)
	}
	assert.Equal(t, []string{"Navidad", "Carnaval", "Navidad"}, names)

	assert.Equal(t, Summary{Properties: 2, Periods: 3, DroppedProperties: 1, DroppedPeriods: 2}, sum)
}

func TestNormalize_DuplicatesKeepLastRow(t *testing.T) {
	feed := &Feed{
		Properties: []models.Property{
			{PropertyID: 1, Title: "Vieja"},
			{PropertyID: 2, Title: "Otra"},
			{PropertyID: 1, Title: "Nueva"},
		},
		Periods: []FeedPeriod{
			{PropertyID: 1, PeriodName: "Navidad", Price: "100", Status: "Disponible"},
			{PropertyID: 1, PeriodName: "Navidad", Price: "200", Status: "Disponible"},
		},
	}

	props, periods, sum := Normalize(feed)
	require.Len(t, props, 2)
	assert.Equal(t, "Nueva", props[0].Title)
	assert.Equal(t, "nueva", props[0].FTS)
	require.Len(t, periods, 1)
	assert.Equal(t, "200", periods[0].Price)
	assert.Equal(t, 1, sum.DroppedProperties)
	assert.Equal(t, 1, sum.DroppedPeriods)
}

func TestBatches_KeepPeriodsWithTheirProperty(t *testing.T) {
	props := []models.Property{{PropertyID: 1}, {PropertyID: 2}, {PropertyID: 3}}
	periods := []models.Period{
		{PropertyID: 3, PeriodName: "Navidad"},
		{PropertyID: 1, PeriodName: "Navidad"},
		{PropertyID: 1, PeriodName: "Carnaval"},
	}

	batches := Batches(props, periods, 2)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Properties, 2)
	assert.Len(t, batches[0].Periods, 2)
	assert.Equal(t, int64(3), batches[1].Properties[0].PropertyID)
	assert.Len(t, batches[1].Periods, 1)

	assert.Empty(t, Batches(nil, nil, 10))
	assert.Len(t, Batches(props, nil, 0), 3)
}

func TestImporter_ImportDocument(t *testing.T) {
	pusher := &MockPusher{}
	pusher.On("PushWait", mock.Anything, mock.Anything).Return(nil)

	importer := NewImporter(pusher, 1, quietLogger())
	sum, err := importer.ImportDocument(context.Background(), strings.NewReader(document))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Batches)
	require.Len(t, pusher.batches, 2)
	assert.Len(t, pusher.batches[0].Periods, 2)
	pusher.AssertNumberOfCalls(t, "PushWait", 2)
}

func TestImporter_QueueFailure(t *testing.T) {
	pusher := &MockPusher{}
	pusher.On("PushWait", mock.Anything, mock.Anything).Return(errors.New("queue is closed"))

	importer := NewImporter(pusher, 10, quietLogger())
	_, err := importer.ImportDocument(context.Background(), strings.NewReader(document))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to queue batch")
}

func TestImporter_ImportStream(t *testing.T) {
	stream := strings.Join([]string{
		`{"type": "items", "data": {"properties": [{"property_id": 1, "title": "Casa"}], "periods": [{"property_id": 1, "period_name": "Navidad", "price": "$1.000", "status": "Disponible"}]}}`,
		`not json`,
		``,
		`{"type": "progress", "data": {}}`,
		`{"type": "items", "data": {"properties": [{"property_id": 2, "title": "Depto"}]}}`,
		`{"type": "complete", "data": {"status": "ok", "total_items": 2}}`,
		`{"type": "items", "data": {"properties": [{"property_id": 3}]}}`,
	}, "\n")

	pusher := &MockPusher{}
	pusher.On("PushWait", mock.Anything, mock.Anything).Return(nil)

	importer := NewImporter(pusher, 10, quietLogger())
	sum, err := importer.ImportStream(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)

	assert.Equal(t, Summary{Properties: 2, Periods: 1, Batches: 2}, sum)
	pusher.AssertNumberOfCalls(t, "PushWait", 2)
}

func TestImporter_ImportStreamError(t *testing.T) {
	stream := `{"type": "error", "data": {"message": "office API unavailable"}}`

	importer := NewImporter(&MockPusher{}, 10, quietLogger())
	_, err := importer.ImportStream(context.Background(), strings.NewReader(stream))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "office API unavailable")
}
