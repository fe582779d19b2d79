package broadcast_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Jamshid2204/msg-sender-bot/internal/broadcast"
	"github.com/Jamshid2204/msg-sender-bot/internal/database"
)

// fakeAPI implements broadcast.TelegramAPI with scriptable admin status and
// per-chat send failures. Message IDs are handed out sequentially.
type fakeAPI struct {
	admins    map[int64]bool
	adminErrs map[int64]error
	sendErrs  map[int64]error
	delErrs   map[int64]error

	nextID   int
	texts    []outboundText
	photos   []int64
	videos   []int64
	albums   map[int64]int
	deleted  []deletedMessage
	adminFor []int64
}

type outboundText struct {
	chatID int64
	text   string
}

type deletedMessage struct {
	chatID    int64
	messageID int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		admins:    map[int64]bool{},
		adminErrs: map[int64]error{},
		sendErrs:  map[int64]error{},
		delErrs:   map[int64]error{},
		albums:    map[int64]int{},
	}
}

func (f *fakeAPI) send(chatID int64) (int, error) {
	if err := f.sendErrs[chatID]; err != nil {
		return 0, err
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeAPI) SendText(_ context.Context, chatID int64, text string) (int, error) {
	id, err := f.send(chatID)
	if err == nil {
		f.texts = append(f.texts, outboundText{chatID: chatID, text: text})
	}
	return id, err
}

func (f *fakeAPI) SendPhoto(_ context.Context, chatID int64, _, _ string) (int, error) {
	id, err := f.send(chatID)
	if err == nil {
		f.photos = append(f.photos, chatID)
	}
	return id, err
}

func (f *fakeAPI) SendVideo(_ context.Context, chatID int64, _, _ string) (int, error) {
	id, err := f.send(chatID)
	if err == nil {
		f.videos = append(f.videos, chatID)
	}
	return id, err
}

func (f *fakeAPI) SendAlbum(_ context.Context, chatID int64, items []broadcast.Item) ([]int, error) {
	if err := f.sendErrs[chatID]; err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(items))
	for range items {
		f.nextID++
		ids = append(ids, f.nextID)
	}
	f.albums[chatID] = len(items)
	return ids, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if err := f.delErrs[chatID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, deletedMessage{chatID: chatID, messageID: messageID})
	return nil
}

func (f *fakeAPI) IsAdmin(_ context.Context, chatID int64) (bool, error) {
	f.adminFor = append(f.adminFor, chatID)
	if err := f.adminErrs[chatID]; err != nil {
		return false, err
	}
	return f.admins[chatID], nil
}

// fakeStore implements database.Store in memory.
type fakeStore struct {
	destinations []database.Destination
	records      []*database.DeliveryRecord
	listErr      error
	saveErr      error
	latestErrs   map[int64]error
}

func newFakeStore(dests ...database.Destination) *fakeStore {
	return &fakeStore{destinations: dests, latestErrs: map[int64]error{}}
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) DestinationExists(_ context.Context, chatID int64) (bool, error) {
	for _, d := range s.destinations {
		if d.ChatID == chatID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateDestination(_ context.Context, dest *database.Destination) error {
	s.destinations = append(s.destinations, *dest)
	return nil
}

func (s *fakeStore) DeleteDestination(_ context.Context, chatID int64) error {
	kept := s.destinations[:0]
	for _, d := range s.destinations {
		if d.ChatID != chatID {
			kept = append(kept, d)
		}
	}
	s.destinations = kept
	return nil
}

func (s *fakeStore) ListDestinations(context.Context) ([]database.Destination, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.destinations, nil
}

func (s *fakeStore) SaveDeliveryRecord(_ context.Context, record *database.DeliveryRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	record.ID = uint(len(s.records) + 1)
	s.records = append(s.records, record)
	return nil
}

func (s *fakeStore) LatestDeliveryRecord(_ context.Context, destinationChatID int64) (*database.DeliveryRecord, error) {
	if err := s.latestErrs[destinationChatID]; err != nil {
		return nil, err
	}
	var latest *database.DeliveryRecord
	for _, r := range s.records {
		if r.DestinationChatID != destinationChatID {
			continue
		}
		if latest == nil || r.SentAt.After(latest.SentAt) || (r.SentAt.Equal(latest.SentAt) && r.ID > latest.ID) {
			latest = r
		}
	}
	return latest, nil
}

func (s *fakeStore) UpsertOperatorProfile(context.Context, *database.OperatorProfile) error {
	return nil
}

func (s *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

func testEngine(api broadcast.TelegramAPI, store database.Store) *broadcast.Engine {
	return broadcast.NewEngine(testLogger(), api, store, broadcast.EngineConfig{
		OperatorIDs:        []int64{42},
		AttemptTimeout:     time.Second,
		AdminWarningFormat: "⚠️ Bot admin emas:\n📛 %s",
	})
}

func textContent(text string) broadcast.Content {
	return broadcast.Single(broadcast.Item{Kind: broadcast.KindText, Payload: text})
}

func TestBroadcastSkipsNonAdminDestinations(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.admins[100] = true
	store := newFakeStore(
		database.Destination{ChatID: 100, DisplayName: "Alpha"},
		database.Destination{ChatID: 200, DisplayName: "Beta"},
	)
	engine := testEngine(api, store)

	result, err := engine.Broadcast(context.Background(), textContent("hello"), 42)
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	if result.Attempted != 2 {
		t.Errorf("Attempted = %d, want 2", result.Attempted)
	}
	if len(result.Delivered) != 1 || result.Delivered[0] != "Alpha" {
		t.Errorf("Delivered = %v, want [Alpha]", result.Delivered)
	}

	// One broadcast text to the admin chat plus one warning to the operator.
	var toChat, toOperator int
	for _, sent := range api.texts {
		switch sent.chatID {
		case 100:
			toChat++
		case 42:
			toOperator++
			if sent.text != "⚠️ Bot admin emas:\n📛 Beta" {
				t.Errorf("warning text = %q", sent.text)
			}
		}
	}
	if toChat != 1 {
		t.Errorf("sent %d messages to chat 100, want 1", toChat)
	}
	if toOperator != 1 {
		t.Errorf("sent %d warnings to operator, want 1", toOperator)
	}

	if len(store.records) != 1 {
		t.Fatalf("recorded %d deliveries, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.DestinationChatID != 100 || rec.OperatorID != 42 || rec.ContentKind != "text" || rec.Payload != "hello" {
		t.Errorf("unexpected delivery record %+v", rec)
	}
}

func TestBroadcastStatusCheckFailureTreatedAsNotAdmin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.adminErrs[100] = errors.New("chat not found")
	store := newFakeStore(database.Destination{ChatID: 100, DisplayName: "Alpha"})
	engine := testEngine(api, store)

	result, err := engine.Broadcast(context.Background(), textContent("hello"), 42)
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if len(result.Delivered) != 0 {
		t.Errorf("Delivered = %v, want none", result.Delivered)
	}
	if len(api.texts) != 1 || api.texts[0].chatID != 42 {
		t.Errorf("expected a single operator warning, got %v", api.texts)
	}
	if len(store.records) != 0 {
		t.Errorf("recorded %d deliveries, want 0", len(store.records))
	}
}

func TestBroadcastDeliveryFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.admins[100] = true
	api.admins[200] = true
	api.sendErrs[100] = errors.New("forbidden")
	store := newFakeStore(
		database.Destination{ChatID: 100, DisplayName: "Alpha"},
		database.Destination{ChatID: 200, DisplayName: "Beta"},
	)
	engine := testEngine(api, store)

	result, err := engine.Broadcast(context.Background(), textContent("hello"), 42)
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if len(result.Delivered) != 1 || result.Delivered[0] != "Beta" {
		t.Errorf("Delivered = %v, want [Beta]", result.Delivered)
	}
	if len(store.records) != 1 || store.records[0].DestinationChatID != 200 {
		t.Errorf("records = %+v, want exactly one for chat 200", store.records)
	}
}

func TestBroadcastAlbumRecordsEveryMessage(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.admins[100] = true
	store := newFakeStore(database.Destination{ChatID: 100, DisplayName: "Alpha"})
	engine := testEngine(api, store)

	content := broadcast.Album([]broadcast.Item{
		{Kind: broadcast.KindPhoto, Payload: "f1", Caption: "first"},
		{Kind: broadcast.KindPhoto, Payload: "f2"},
		{Kind: broadcast.KindVideo, Payload: "f3"},
	})

	result, err := engine.Broadcast(context.Background(), content, 42)
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if len(result.Delivered) != 1 {
		t.Fatalf("Delivered = %v, want one destination", result.Delivered)
	}
	if api.albums[100] != 3 {
		t.Errorf("album to chat 100 carried %d items, want 3", api.albums[100])
	}
	if len(store.records) != 3 {
		t.Fatalf("recorded %d deliveries, want 3", len(store.records))
	}
	if store.records[0].Caption.String != "first" || !store.records[0].Caption.Valid {
		t.Errorf("first record caption = %+v, want valid %q", store.records[0].Caption, "first")
	}
	if store.records[1].Caption.Valid {
		t.Errorf("second record caption should be null, got %+v", store.records[1].Caption)
	}
}

func TestBroadcastEmptyContent(t *testing.T) {
	t.Parallel()

	engine := testEngine(newFakeAPI(), newFakeStore())
	if _, err := engine.Broadcast(context.Background(), broadcast.Content{}, 42); err == nil {
		t.Error("Broadcast() with empty content should fail")
	}
}

func TestBroadcastDestinationListFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.listErr = errors.New("database is locked")
	engine := testEngine(newFakeAPI(), store)

	if _, err := engine.Broadcast(context.Background(), textContent("hello"), 42); err == nil {
		t.Error("Broadcast() should surface destination list failure")
	}
}

func TestRetractLastDeletesLatestPerDestination(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	store := newFakeStore(
		database.Destination{ChatID: 100, DisplayName: "Alpha"},
		database.Destination{ChatID: 200, DisplayName: "Beta"},
		database.Destination{ChatID: 300, DisplayName: "Gamma"},
	)
	t1 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	store.records = []*database.DeliveryRecord{
		{ID: 1, DestinationChatID: 100, PlatformMessageID: 11, SentAt: t1},
		{ID: 2, DestinationChatID: 100, PlatformMessageID: 12, SentAt: t2},
		{ID: 3, DestinationChatID: 200, PlatformMessageID: 21, SentAt: t1},
	}
	engine := testEngine(api, store)

	retracted, err := engine.RetractLast(context.Background())
	if err != nil {
		t.Fatalf("RetractLast() error = %v", err)
	}
	if retracted != 2 {
		t.Errorf("retracted = %d, want 2", retracted)
	}

	want := map[int64]int{100: 12, 200: 21}
	if len(api.deleted) != 2 {
		t.Fatalf("deleted %d messages, want 2: %v", len(api.deleted), api.deleted)
	}
	for _, del := range api.deleted {
		if want[del.chatID] != del.messageID {
			t.Errorf("deleted message %d in chat %d, want %d", del.messageID, del.chatID, want[del.chatID])
		}
	}
}

func TestRetractLastToleratesDeleteFailure(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.delErrs[100] = errors.New("message to delete not found")
	store := newFakeStore(
		database.Destination{ChatID: 100, DisplayName: "Alpha"},
		database.Destination{ChatID: 200, DisplayName: "Beta"},
	)
	sentAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	store.records = []*database.DeliveryRecord{
		{ID: 1, DestinationChatID: 100, PlatformMessageID: 11, SentAt: sentAt},
		{ID: 2, DestinationChatID: 200, PlatformMessageID: 21, SentAt: sentAt},
	}
	engine := testEngine(api, store)

	retracted, err := engine.RetractLast(context.Background())
	if err != nil {
		t.Fatalf("RetractLast() error = %v", err)
	}
	if retracted != 1 {
		t.Errorf("retracted = %d, want 1", retracted)
	}

	// Records stay in the ledger for audit.
	if len(store.records) != 2 {
		t.Errorf("ledger shrank to %d records, want 2", len(store.records))
	}
}

func TestRetractLastLookupFailureSkipsDestination(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	store := newFakeStore(database.Destination{ChatID: 100, DisplayName: "Alpha"})
	store.latestErrs[100] = fmt.Errorf("disk I/O error")
	engine := testEngine(api, store)

	retracted, err := engine.RetractLast(context.Background())
	if err != nil {
		t.Fatalf("RetractLast() error = %v", err)
	}
	if retracted != 0 {
		t.Errorf("retracted = %d, want 0", retracted)
	}
}
