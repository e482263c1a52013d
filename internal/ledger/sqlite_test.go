package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRecord(handID, tableID string, playedAt time.Time) HandRecord {
	return HandRecord{
		HandID:   handID,
		TableID:  tableID,
		PlayedAt: playedAt,
		Round:    "showdown",
		Pot:      120,
		Players: []PlayerResult{
			{PlayerID: "p1", Name: "alice", Chips: 1060},
			{PlayerID: "p2", Name: "bob", Chips: 940, Folded: true},
		},
	}
}

func TestSQLiteRecordAndListRecent(t *testing.T) {
	svc, err := NewSQLiteService(":memory:")
	assert.NoError(t, err)
	defer svc.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.NoError(t, svc.RecordHand(context.Background(), testRecord("h1", "t1", base)))
	assert.NoError(t, svc.RecordHand(context.Background(), testRecord("h2", "t1", base.Add(time.Minute))))
	assert.NoError(t, svc.RecordHand(context.Background(), testRecord("h3", "t2", base)))

	records, err := svc.ListRecent(context.Background(), "t1", 10)
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	// Most recent first.
	assert.Equal(t, "h2", records[0].HandID)
	assert.Equal(t, "h1", records[1].HandID)
	assert.Equal(t, int64(120), records[0].Pot)
	assert.Equal(t, "showdown", records[0].Round)
	assert.Len(t, records[0].Players, 2)
	assert.Equal(t, "alice", records[0].Players[0].Name)
	assert.True(t, records[0].Players[1].Folded)
}

func TestSQLiteRecordHandUpsert(t *testing.T) {
	svc, err := NewSQLiteService(":memory:")
	assert.NoError(t, err)
	defer svc.Close()

	rec := testRecord("h1", "t1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	assert.NoError(t, svc.RecordHand(context.Background(), rec))

	rec.Pot = 300
	assert.NoError(t, svc.RecordHand(context.Background(), rec))

	records, err := svc.ListRecent(context.Background(), "t1", 10)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int64(300), records[0].Pot)
}

func TestSQLiteRecordHandRequiresIDs(t *testing.T) {
	svc, err := NewSQLiteService(":memory:")
	assert.NoError(t, err)
	defer svc.Close()

	assert.Error(t, svc.RecordHand(context.Background(), HandRecord{TableID: "t1"}))
	assert.Error(t, svc.RecordHand(context.Background(), HandRecord{HandID: "h1"}))
}

func TestNoopServiceRecordsNothing(t *testing.T) {
	svc := NewNoopService()
	assert.NoError(t, svc.RecordHand(context.Background(), testRecord("h1", "t1", time.Now())))

	records, err := svc.ListRecent(context.Background(), "t1", 10)
	assert.NoError(t, err)
	assert.Empty(t, records)
}
