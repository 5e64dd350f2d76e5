package articles

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akili/pkg/models"
)

func longText(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "1 min read"},
		{"short", "a few words", "1 min read"},
		{"exactly 200", longText(200), "1 min read"},
		{"201 rounds up", longText(201), "2 min read"},
		{"tags add no words", "<p>" + longText(200) + "</p><br/><img src=\"a.png\"/>", "1 min read"},
		{"text between tags counts", "<p>" + longText(200) + "</p> <b>x</b>", "2 min read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadTime(tt.content))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "hello world...", Excerpt("<p>hello <em>world</em></p>"))

	long := strings.Repeat("é", 250)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("é", 200)+"...", got)
}

func TestDraftValidate(t *testing.T) {
	ok := Draft{Title: "t", Content: "c", Category: "Tech", Status: models.StatusDraft}
	require.NoError(t, ok.Validate())

	noTitle := ok
	noTitle.Title = "  "
	assert.ErrorIs(t, noTitle.Validate(), ErrEmptyTitle)

	badStatus := ok
	badStatus.Status = "archived"
	assert.ErrorIs(t, badStatus.Validate(), ErrInvalidStatus)

	scheduled := ok
	scheduled.Status = models.StatusScheduled
	assert.ErrorIs(t, scheduled.Validate(), ErrMissingSchedule)
}

func TestDraftBuild(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	author := &models.AdminUser{ID: "u1", Email: "ed@akili.test", DisplayName: "Ed"}

	d := Draft{
		Title:    " Launch ",
		Content:  "<p>" + longText(10) + "</p>",
		Category: "Tech",
		Status:   models.StatusPublished,
	}
	a := d.Build(author, now)

	assert.Equal(t, "Launch", a.Title)
	assert.Equal(t, "Ed", a.Author)
	assert.Equal(t, "u1", a.AuthorID)
	assert.Equal(t, "2025-03-04T05:06:07Z", a.PublishDate)
	assert.Equal(t, longText(10)+"...", a.Excerpt)
	assert.Equal(t, "1 min read", a.ReadTime)
	assert.Equal(t, "Launch", a.SEOTitle)
	assert.Equal(t, []string{}, a.Tags)
	assert.Nil(t, a.ScheduledDate)

	noName := &models.AdminUser{ID: "u2", Email: "anon@akili.test"}
	assert.Equal(t, "anon@akili.test", d.Build(noName, now).Author)
	assert.Equal(t, "Admin", d.Build(nil, now).Author)
}
