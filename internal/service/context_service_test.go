package service

import (
	"testing"
	"time"

	"github.com/ecopress/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContextService(f searchFixture, recencyCap int) *ContextService {
	return NewContextService(f.db, NewArticleService(f.db), NewVisitService(f.db), recencyCap, nil)
}

func TestFilterOptionsForArticles(t *testing.T) {
	f := setupSearchFixture(t)
	carol := createTestUser(t, f.db, "carol", db.RoleEditor)
	createTestArticle(t, f.db, db.Article{Title: "Carol draft", Tags: "Secret", Category: "Hidden", AuthorID: &carol.ID})
	createTestArticle(t, f.db, db.Article{Title: "Lowercase category", Category: "climate", Published: true})

	options := newTestContextService(f, 10).FilterOptions(db.ArticleSchema)

	assert.False(t, options.Degraded)
	require.Len(t, options.Authors, 2)
	assert.Equal(t, "alice", options.Authors[0].Username)
	assert.Equal(t, "bob", options.Authors[1].Username)
	assert.Equal(t, []string{"Energy", "Ocean", "Solar", "wind"}, options.Tags)
	assert.Equal(t, []string{"climate", "Energy", "Ocean"}, options.Categories)
}

func TestFilterOptionsForPapersSkipsMissingCapabilities(t *testing.T) {
	f := setupSearchFixture(t)
	_, err := NewPaperService(f.db).Create(f.bob.ID, PaperInput{Title: "Paper", Content: "x", Published: true})
	require.NoError(t, err)

	options := newTestContextService(f, 10).FilterOptions(db.PaperSchema)

	assert.False(t, options.Degraded)
	require.Len(t, options.Authors, 1)
	assert.Equal(t, "bob", options.Authors[0].Username)
	assert.Empty(t, options.Tags)
	assert.Empty(t, options.Categories)
}

func TestFilterOptionsDegradesOnStorageFailure(t *testing.T) {
	f := setupSearchFixture(t)
	svc := newTestContextService(f, 10)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	options := svc.FilterOptions(db.ArticleSchema)
	assert.True(t, options.Degraded)

	recent := svc.RecentInSession([]uint{f.solar.ID})
	assert.True(t, recent.Degraded)
	assert.Empty(t, recent.Articles)

	counts := svc.TodayCounts(SessionIdentity("x"), time.Now())
	assert.True(t, counts.Degraded)
}

func TestRecentInSessionKeepsListOrder(t *testing.T) {
	f := setupSearchFixture(t)
	draft := createTestArticle(t, f.db, db.Article{Title: "Another draft", Published: false})

	svc := newTestContextService(f, 2)
	recent := svc.RecentInSession([]uint{draft.ID, f.solar.ID, 999, f.coral.ID})

	assert.False(t, recent.Degraded)
	assert.Equal(t, []string{"Solar power basics"}, articleTitles(recent.Articles), "cap applies before misses are dropped")

	svc = newTestContextService(f, 10)
	recent = svc.RecentInSession([]uint{f.coral.ID, 999, f.solar.ID, f.wind.ID})
	assert.Equal(t, []string{"Coral reefs", "Solar power basics", "Wind farms"}, articleTitles(recent.Articles))

	assert.Empty(t, svc.RecentInSession(nil).Articles)
}

func TestVisitSummaryAggregator(t *testing.T) {
	f := setupSearchFixture(t)
	svc := newTestContextService(f, 10)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	visits := NewVisitService(f.db)
	for i := 0; i < 3; i++ {
		_, err := visits.RecordVisit(UserIdentity(f.alice.ID), now.AddDate(0, 0, -i))
		require.NoError(t, err)
	}

	summary := svc.VisitSummary(UserIdentity(f.alice.ID))
	assert.False(t, summary.Degraded)
	assert.Equal(t, uint64(3), summary.Total)
	require.NotNil(t, summary.LastSeen)
	assert.True(t, summary.LastSeen.Equal(now))

	anonymous := svc.VisitSummary(SessionIdentity("guest"))
	assert.Equal(t, VisitSummary{}, anonymous)

	counts := svc.TodayCounts(UserIdentity(f.alice.ID), now)
	assert.Equal(t, TodayCounts{TotalToday: 1, UserToday: 1}, counts)
}
