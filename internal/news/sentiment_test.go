package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/types"
)

type fixedModel float64

func (f fixedModel) Compound(string) float64 { return float64(f) }

// tableModel returns a per-title compound, 0 for unknown titles.
type tableModel map[string]float64

func (m tableModel) Compound(text string) float64 { return m[text] }

func TestRelevanceFilter(t *testing.T) {
	f := NewRelevanceFilter(store.DefaultKeywords, 6)

	tests := []struct {
		title string
		want  []string
	}{
		{"EARNINGS beat", []string{"earnings"}},
		{"Weather is nice today", nil},
		{"SEC probe follows merger talks", []string{"merger", "SEC"}},
		{"Analyst raises price target after upgrade", []string{"upgrade", "price target"}},
		// "acquisition" and "acquire" both match on substring, kept in list order
		{"Firm to acquire rival; acquisition closes", []string{"acquisition", "acquire"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := f.Hits(tt.title)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelevanceFilter_CapAndDedup(t *testing.T) {
	title := "earnings guidance forecast revenue profit margin merger buyout deal"
	hits := NewRelevanceFilter(store.DefaultKeywords, 6).Hits(title)
	assert.Equal(t, []string{"earnings", "guidance", "forecast", "revenue", "profit", "margin"}, hits)

	dup := NewRelevanceFilter([]string{"deal", "Deal", " ", "merger"}, 6).Hits("merger deal")
	assert.Equal(t, []string{"deal", "merger"}, dup)
}

func TestScorer_NoRelevantHeadlines(t *testing.T) {
	s := NewScorer(store.DefaultNewsScoringConfig(), fixedModel(1))

	score, used := s.Score([]types.Headline{{Title: "Sunny weekend ahead"}, {Title: "   "}})
	assert.Equal(t, 0.0, score)
	assert.NotNil(t, used)
	assert.Empty(t, used)

	score, used = s.Score(nil)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, used)
}

func TestScorer_BumpSaturates(t *testing.T) {
	s := NewScorer(store.DefaultNewsScoringConfig(), fixedModel(1))
	hs := make([]types.Headline, 5)
	for i := range hs {
		hs[i] = types.Headline{Title: "Record earnings"}
	}
	score, used := s.Score(hs)
	assert.Equal(t, 10.0, score)
	assert.Len(t, used, 5)

	score, _ = s.Score(append(hs, hs...))
	assert.Equal(t, 10.0, score)
}

func TestScorer_AverageAndBump(t *testing.T) {
	model := tableModel{
		"Upgrade lifts shares":     0.6,
		"Lawsuit filed over deal":  -0.2,
		"Celebrity spotted at mall": 0.9,
	}
	s := NewScorer(store.DefaultNewsScoringConfig(), model)

	score, used := s.Score([]types.Headline{
		{Title: "Upgrade lifts shares", Domain: "cnn.com", URL: "u1"},
		{Title: "Celebrity spotted at mall"},
		{Title: "Lawsuit filed over deal", Domain: "foxnews.com"},
	})
	require.Len(t, used, 2)
	// avg 0.2 -> 2.0, bump 0.8
	assert.InDelta(t, 2.8, score, 1e-9)

	assert.Equal(t, "cnn.com", used[0].Domain)
	assert.Equal(t, "u1", used[0].URL)
	assert.Equal(t, 0.6, used[0].Sentiment)
	assert.Equal(t, []string{"upgrade"}, used[0].KeywordHits)
	assert.Equal(t, []string{"lawsuit", "deal"}, used[1].KeywordHits)
}

func TestScorer_NegativeClip(t *testing.T) {
	s := NewScorer(store.DefaultNewsScoringConfig(), fixedModel(-1))
	score, _ := s.Score([]types.Headline{{Title: "Fraud lawsuit"}, {Title: "SEC charges"}})
	// -10 then +0.8 bump
	assert.InDelta(t, -9.2, score, 1e-9)
}

func TestLexiconModel(t *testing.T) {
	m := NewLexiconModel()

	assert.InDelta(t, 0.4404, m.Compound("good"), 1e-4)
	assert.Equal(t, 0.0, m.Compound(""))
	assert.Equal(t, 0.0, m.Compound("Quarterly report scheduled"))

	assert.Greater(t, m.Compound("Apple posts strong profit growth"), 0.0)
	assert.Less(t, m.Compound("Company faces lawsuit over fraud"), 0.0)

	assert.Less(t, m.Compound("not good"), 0.0, "negation flips polarity")
	assert.Less(t, m.Compound("earnings didn't improve"), 0.0)
	assert.Greater(t, m.Compound("very good"), m.Compound("good"), "booster")
	assert.Less(t, m.Compound("slightly good"), m.Compound("good"), "dampener")
	assert.Greater(t, m.Compound("GOOD earnings"), m.Compound("good earnings"), "caps emphasis")
	assert.Less(t, m.Compound("good but bad"), 0.0, "clause after but dominates")
	assert.Greater(t, m.Compound("good!!"), m.Compound("good"), "exclamation")

	for _, s := range []string{
		"best best best best best best best best!!!!",
		"worst worst worst worst crisis scandal fraud",
	} {
		c := m.Compound(s)
		assert.GreaterOrEqual(t, c, -1.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestLexiconModel_WithWords(t *testing.T) {
	m := NewLexiconModel().WithWords(map[string]float64{"Buyback": 2.0})
	assert.Greater(t, m.Compound("buyback announced"), 0.0)
	assert.Equal(t, 0.0, NewLexiconModel().Compound("buyback announced"))
}
