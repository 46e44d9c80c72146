package services

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	aggimpl "github.com/yungbote/quizprogress-backend/internal/data/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/data/repos"
	"github.com/yungbote/quizprogress-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizprogress-backend/internal/domain"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/domain/user"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

// memStore is an in-memory user store with the same compare-and-set semantics as the aggregate.
type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*types.User
	quizzes []*types.EnrichedQuiz

	findCalls  int
	countCalls int
	// beforeRead, when set, runs after a user snapshot is taken and before it is returned.
	beforeRead func()
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]*types.User{}}
}

func (s *memStore) addUser() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.users[id] = &types.User{ID: id, Email: id.String() + "@example.com"}
	s.mu.Unlock()
	return id
}

func (s *memStore) FindUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	s.mu.Lock()
	u, ok := s.users[id]
	var snap *types.User
	if ok {
		snap = user.Mutation{}.Apply(u, time.Now())
		snap.Version = u.Version
	}
	hook := s.beforeRead
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "memStore.FindUserByID", "user not found", nil)
	}
	return snap, nil
}

func (s *memStore) AtomicUpdateUser(ctx context.Context, id uuid.UUID, m user.Mutation) (*types.User, error) {
	if err := m.Validate(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, "memStore.AtomicUpdateUser", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "memStore.AtomicUpdateUser", "user not found", nil)
	}
	if u.Version != m.ExpectedVersion {
		return nil, domainagg.NewError(domainagg.CodeConflict, "memStore.AtomicUpdateUser", "stale version", nil)
	}
	next := m.Apply(u, time.Now())
	s.users[id] = next
	return next, nil
}

func (s *memStore) FindQuizzesByIDs(ctx context.Context, ids []uuid.UUID, skip, limit int) ([]*types.EnrichedQuiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	matched := s.matching(ids)
	if skip >= len(matched) {
		return []*types.EnrichedQuiz{}, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], nil
}

func (s *memStore) CountQuizzesByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countCalls++
	return len(s.matching(ids)), nil
}

func (s *memStore) matching(ids []uuid.UUID) []*types.EnrichedQuiz {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.EnrichedQuiz
	for _, q := range s.quizzes {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memStore) addQuizzes(n int) []uuid.UUID {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		q := &types.EnrichedQuiz{ID: uuid.New(), Title: "quiz", CategoryName: "math", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		s.quizzes = append(s.quizzes, q)
		ids = append(ids, q.ID)
	}
	return ids
}

func newMemProgress(s *memStore) ProgressService {
	return NewProgressService(logger.Nop(), s, s, s)
}

func TestRecordAttemptOverwritesLedgerAndAccumulatesTotals(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	ctx := context.Background()
	uid := store.addUser()
	quizA := uuid.New()

	res, err := svc.RecordAttempt(ctx, uid, quizA, 10, 7, rawjson.JSON(`70`))
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if res.TotalQuestions != 10 || res.TotalAnswers != 7 || res.Average == nil || *res.Average != 70 {
		t.Fatalf("first attempt: %+v", res)
	}

	res, err = svc.RecordAttempt(ctx, uid, quizA, 10, 9, rawjson.JSON(`90`))
	if err != nil {
		t.Fatalf("RecordAttempt (again): %v", err)
	}
	if res.TotalQuestions != 20 || res.TotalAnswers != 16 || *res.Average != 80 {
		t.Fatalf("re-attempt: %+v", res)
	}
	if len(res.PassedQuizzes) != 1 || res.PassedQuizzes[0].CorrectAnswers != 9 || string(res.PassedQuizzes[0].Rating) != `90` {
		t.Fatalf("ledger entry not overwritten: %+v", res.PassedQuizzes)
	}
}

func TestRecordAttemptInvariants(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	ctx := context.Background()
	uid := store.addUser()
	quizzes := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	steps := []struct {
		quiz    uuid.UUID
		qty     int
		correct int
	}{
		{quizzes[0], 4, 1}, {quizzes[1], 7, 7}, {quizzes[0], 4, 4},
		{quizzes[2], 3, 0}, {quizzes[1], 9, 2}, {quizzes[2], 0, 0},
	}
	var lastQ, lastA int64
	for i, st := range steps {
		res, err := svc.RecordAttempt(ctx, uid, st.quiz, st.qty, st.correct, nil)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.TotalQuestions < lastQ || res.TotalAnswers < lastA {
			t.Fatalf("step %d: totals decreased: %d/%d -> %d/%d", i, lastQ, lastA, res.TotalQuestions, res.TotalAnswers)
		}
		lastQ, lastA = res.TotalQuestions, res.TotalAnswers
		want := int(float64(res.TotalAnswers)*100/float64(res.TotalQuestions) + 0.5)
		if res.Average == nil || *res.Average != want {
			t.Fatalf("step %d: average=%v want %d", i, res.Average, want)
		}
		seen := map[uuid.UUID]int{}
		for _, a := range res.PassedQuizzes {
			seen[a.QuizID]++
		}
		for q, n := range seen {
			if n != 1 {
				t.Fatalf("step %d: quiz %s appears %d times", i, q, n)
			}
		}
	}

	store.quizzes = nil
	for i, q := range quizzes {
		store.quizzes = append(store.quizzes, &types.EnrichedQuiz{ID: q, CreatedAt: time.Unix(int64(i), 0)})
	}
	page, err := svc.GetHistory(ctx, uid, 1, 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if page.TotalCount != 3 || len(page.Items) != 3 {
		t.Fatalf("history: %+v", page)
	}
}

func TestRecordAttemptErrors(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	ctx := context.Background()
	uid := store.addUser()

	cases := []struct {
		name    string
		user    uuid.UUID
		qty     int
		correct int
		code    domainagg.ErrorCode
	}{
		{name: "correct_above_quantity", user: uid, qty: 3, correct: 4, code: domainagg.CodeValidation},
		{name: "negative_correct", user: uid, qty: 3, correct: -1, code: domainagg.CodeValidation},
		{name: "unknown_user", user: uuid.New(), qty: 3, correct: 1, code: domainagg.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordAttempt(ctx, tc.user, uuid.New(), tc.qty, tc.correct, nil)
			if !domainagg.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
	if u := store.users[uid]; u.TotalQuestions != 0 || len(u.PassedQuizzes) != 0 {
		t.Fatalf("rejected attempts must not mutate: %+v", u)
	}
}

func TestGetHistoryPaging(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	ctx := context.Background()
	uid := store.addUser()
	ids := store.addQuizzes(5)
	for _, id := range ids {
		if _, err := svc.RecordAttempt(ctx, uid, id, 2, 1, nil); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}

	cases := []struct {
		page, limit int
		items       int
		first       uuid.UUID
	}{
		{page: 1, limit: 2, items: 2, first: ids[4]},
		{page: 2, limit: 2, items: 2, first: ids[2]},
		{page: 3, limit: 2, items: 1, first: ids[0]},
		{page: 4, limit: 2, items: 0},
	}
	for _, tc := range cases {
		page, err := svc.GetHistory(ctx, uid, tc.page, tc.limit)
		if err != nil {
			t.Fatalf("GetHistory(%d,%d): %v", tc.page, tc.limit, err)
		}
		if page.TotalCount != 5 || len(page.Items) != tc.items {
			t.Fatalf("GetHistory(%d,%d): total=%d items=%d", tc.page, tc.limit, page.TotalCount, len(page.Items))
		}
		if tc.items > 0 && page.Items[0].ID != tc.first {
			t.Fatalf("GetHistory(%d,%d): first=%s want %s", tc.page, tc.limit, page.Items[0].ID, tc.first)
		}
	}
}

func TestGetHistoryEmptyLedgerSkipsCatalog(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	uid := store.addUser()
	store.addQuizzes(3)

	page, err := svc.GetHistory(context.Background(), uid, 1, 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if page.TotalCount != 0 || page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
	if store.findCalls != 0 || store.countCalls != 0 {
		t.Fatalf("catalog called: find=%d count=%d", store.findCalls, store.countCalls)
	}
}

func TestGetHistoryValidation(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	uid := store.addUser()
	for _, pl := range [][2]int{{0, 10}, {1, 0}, {-1, -1}, {math.MaxInt, 2}, {math.MaxInt/4 + 2, 4}} {
		if _, err := svc.GetHistory(context.Background(), uid, pl[0], pl[1]); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("GetHistory(%d,%d): expected validation, got %v", pl[0], pl[1], err)
		}
	}
	if _, err := svc.GetHistory(context.Background(), uuid.New(), 1, 1); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestToggleFavoriteTwiceRestoresState(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	ctx := context.Background()
	uid := store.addUser()
	keep, quiz := uuid.New(), uuid.New()
	if added, err := svc.ToggleFavorite(ctx, uid, keep); err != nil || !added {
		t.Fatalf("seed toggle: added=%v err=%v", added, err)
	}

	added, err := svc.ToggleFavorite(ctx, uid, quiz)
	if err != nil || !added {
		t.Fatalf("first toggle: added=%v err=%v", added, err)
	}
	added, err = svc.ToggleFavorite(ctx, uid, quiz)
	if err != nil || added {
		t.Fatalf("second toggle: added=%v err=%v", added, err)
	}
	u := store.users[uid]
	if len(u.Favorites) != 1 || !u.HasFavorite(keep) {
		t.Fatalf("favorites changed: %v", u.FavoriteIDs())
	}
	if _, err := svc.ToggleFavorite(ctx, uuid.New(), quiz); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestConcurrentTogglesFromAbsentAddOnce(t *testing.T) {
	store := newMemStore()
	svc := newMemProgress(store)
	uid := store.addUser()
	quiz := uuid.New()

	// Both callers read "absent" before either writes.
	var barrier sync.WaitGroup
	barrier.Add(2)
	store.beforeRead = func() {
		barrier.Done()
		barrier.Wait()
	}

	type result struct {
		added bool
		err   error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			added, err := svc.ToggleFavorite(context.Background(), uid, quiz)
			results <- result{added, err}
		}()
	}
	var adds, conflicts int
	for i := 0; i < 2; i++ {
		r := <-results
		switch {
		case r.err == nil && r.added:
			adds++
		case domainagg.IsCode(r.err, domainagg.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected result: %+v", r)
		}
	}
	if adds != 1 || conflicts != 1 {
		t.Fatalf("adds=%d conflicts=%d", adds, conflicts)
	}
	u := store.users[uid]
	if len(u.Favorites) != 1 || !u.HasFavorite(quiz) {
		t.Fatalf("favorites=%v", u.FavoriteIDs())
	}
}

func TestProgressServiceAgainstDatabase(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "svc-"+uuid.NewString()+"@example.com")
	cat := testutil.SeedCategory(t, ctx, db, "cat-"+uuid.NewString())
	quizzes := testutil.SeedQuizzes(t, ctx, db, cat.ID, 5)

	base := aggimpl.BaseDeps{DB: db, Log: log}
	agg := aggimpl.NewUserProgressAggregate(aggimpl.UserProgressAggregateDeps{
		Base:      base,
		Users:     repos.NewUserRepo(db, log),
		Favorites: repos.NewUserFavoriteRepo(db, log),
		Attempts:  repos.NewQuizAttemptRepo(db, log),
	})
	catalog := aggimpl.NewQuizCatalog(aggimpl.QuizCatalogDeps{Base: base, Quizzes: repos.NewQuizRepo(db, log)})
	svc := NewProgressService(log, agg, agg, catalog)

	for _, q := range quizzes {
		if _, err := svc.RecordAttempt(ctx, u.ID, q.ID, 10, 5, rawjson.JSON(`{"stars":3}`)); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	page, err := svc.GetHistory(ctx, u.ID, 1, 2)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if page.TotalCount != 5 || len(page.Items) != 2 || page.Items[0].ID != quizzes[4].ID {
		t.Fatalf("page 1: %+v", page)
	}
	if page.Items[0].CategoryName != cat.Name {
		t.Fatalf("category not joined: %+v", page.Items[0])
	}
	page, err = svc.GetHistory(ctx, u.ID, 3, 2)
	if err != nil {
		t.Fatalf("GetHistory page 3: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != quizzes[0].ID {
		t.Fatalf("page 3: %+v", page)
	}

	added, err := svc.ToggleFavorite(ctx, u.ID, quizzes[0].ID)
	if err != nil || !added {
		t.Fatalf("ToggleFavorite: added=%v err=%v", added, err)
	}
	fresh, err := agg.FindUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindUserByID: %v", err)
	}
	if fresh.TotalQuestions != 50 || fresh.TotalAnswers != 25 || !fresh.HasFavorite(quizzes[0].ID) {
		t.Fatalf("persisted state: %+v", fresh)
	}
}

func TestRecordAttemptStoresScalarRatingsVerbatim(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "rating-"+uuid.NewString()+"@example.com")

	agg := aggimpl.NewUserProgressAggregate(aggimpl.UserProgressAggregateDeps{
		Base:      aggimpl.BaseDeps{DB: db, Log: log},
		Users:     repos.NewUserRepo(db, log),
		Favorites: repos.NewUserFavoriteRepo(db, log),
		Attempts:  repos.NewQuizAttemptRepo(db, log),
	})
	svc := NewProgressService(log, agg, agg, nil)

	for _, rating := range []string{`70`, `7.50`, `"great"`, `true`, `[1,2]`} {
		quiz := uuid.New()
		res, err := svc.RecordAttempt(ctx, u.ID, quiz, 10, 7, rawjson.JSON(rating))
		if err != nil {
			t.Fatalf("RecordAttempt(rating=%s): %v", rating, err)
		}
		var got *types.QuizAttempt
		for i := range res.PassedQuizzes {
			if res.PassedQuizzes[i].QuizID == quiz {
				got = res.PassedQuizzes[i]
			}
		}
		if got == nil || string(got.Rating) != rating {
			t.Fatalf("rating %s came back as %+v", rating, got)
		}
	}

	fresh, err := agg.FindUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindUserByID: %v", err)
	}
	if len(fresh.PassedQuizzes) != 5 || string(fresh.PassedQuizzes[0].Rating) != `70` {
		t.Fatalf("ledger: %+v", fresh.PassedQuizzes)
	}
}
