package news

import (
	"math"
	"strings"
	"unicode"
)

// Rule weights for the lexicon model.
const (
	boosterIncr   = 0.293
	boosterDecr   = -0.293
	capsIncr      = 0.733
	negationScale = -0.74
	normAlpha     = 15.0
	exclaimIncr   = 0.292
	questionIncr  = 0.18
)

// LexiconModel is a rule-based valence model over a word lexicon. It
// handles negation, intensifiers, ALL-CAPS emphasis, "but" contrast and
// punctuation emphasis, and normalizes the sum into [-1,1].
type LexiconModel struct {
	lexicon   map[string]float64
	boosters  map[string]float64
	negations map[string]struct{}
}

func NewLexiconModel() *LexiconModel {
	m := &LexiconModel{
		lexicon:   make(map[string]float64, len(defaultLexicon)),
		boosters:  make(map[string]float64, len(defaultBoosters)),
		negations: make(map[string]struct{}, len(defaultNegations)),
	}
	for k, v := range defaultLexicon {
		m.lexicon[k] = v
	}
	for k, v := range defaultBoosters {
		m.boosters[k] = v
	}
	for _, n := range defaultNegations {
		m.negations[n] = struct{}{}
	}
	return m
}

// WithWords returns a copy of the model with extra or overridden valences.
func (m *LexiconModel) WithWords(words map[string]float64) *LexiconModel {
	out := NewLexiconModel()
	for k, v := range m.lexicon {
		out.lexicon[k] = v
	}
	for k, v := range words {
		out.lexicon[strings.ToLower(k)] = v
	}
	return out
}

// Compound returns the normalized sentiment of text in [-1,1].
func (m *LexiconModel) Compound(text string) float64 {
	tokens := tokenizeWords(text)
	if len(tokens) == 0 {
		return 0
	}
	capDiff := mixedCase(tokens)

	valences := make([]float64, len(tokens))
	for i, tok := range tokens {
		lower := strings.ToLower(tok)
		if _, ok := m.boosters[lower]; ok {
			continue
		}
		v, ok := m.lexicon[lower]
		if !ok {
			continue
		}
		if capDiff && isUpper(tok) {
			v += math.Copysign(capsIncr, v)
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := tokens[i-back]
			pl := strings.ToLower(prev)
			if _, isLex := m.lexicon[pl]; isLex {
				continue
			}
			if s := m.boosterScalar(prev, v, capDiff); s != 0 {
				switch back {
				case 2:
					s *= 0.95
				case 3:
					s *= 0.9
				}
				v += s
			}
			if m.negated(pl) {
				v *= negationScale
			}
		}
		valences[i] = v
	}

	for i, tok := range tokens {
		if strings.ToLower(tok) != "but" {
			continue
		}
		for j := range valences {
			switch {
			case j < i:
				valences[j] *= 0.5
			case j > i:
				valences[j] *= 1.5
			}
		}
		break
	}

	sum := 0.0
	for _, v := range valences {
		sum += v
	}
	if sum != 0 {
		sum += math.Copysign(punctuationEmphasis(text), sum)
	}
	return normalize(sum)
}

func (m *LexiconModel) boosterScalar(word string, valence float64, capDiff bool) float64 {
	b, ok := m.boosters[strings.ToLower(word)]
	if !ok {
		return 0
	}
	s := b
	if valence < 0 {
		s = -s
	}
	if capDiff && isUpper(word) {
		s += math.Copysign(capsIncr, valence)
	}
	return s
}

func (m *LexiconModel) negated(word string) bool {
	if _, ok := m.negations[word]; ok {
		return true
	}
	return strings.HasSuffix(word, "n't")
}

func punctuationEmphasis(text string) float64 {
	ex := min(strings.Count(text, "!"), 4)
	emph := float64(ex) * exclaimIncr
	if q := strings.Count(text, "?"); q > 1 {
		if q <= 3 {
			emph += float64(q) * questionIncr
		} else {
			emph += 0.96
		}
	}
	return emph
}

func normalize(s float64) float64 {
	n := s / math.Sqrt(s*s+normAlpha)
	return math.Max(-1, math.Min(1, n))
}

// tokenizeWords splits on whitespace and trims surrounding punctuation,
// dropping single-character leftovers.
func tokenizeWords(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})
		if len([]rune(w)) <= 1 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isUpper(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// mixedCase reports whether some but not all tokens are ALL-CAPS.
func mixedCase(tokens []string) bool {
	upper := 0
	for _, t := range tokens {
		if isUpper(t) {
			upper++
		}
	}
	return upper > 0 && upper < len(tokens)
}

var defaultNegations = []string{
	"not", "no", "never", "none", "nobody", "nothing", "neither", "nor",
	"nowhere", "without", "cannot", "cant", "dont", "doesnt", "didnt",
	"isnt", "wasnt", "arent", "werent", "wont", "wouldnt", "shouldnt",
	"couldnt", "hasnt", "havent", "hadnt", "rarely", "seldom",
}

var defaultBoosters = map[string]float64{
	"absolutely": boosterIncr, "amazingly": boosterIncr, "completely": boosterIncr,
	"considerably": boosterIncr, "deeply": boosterIncr, "enormously": boosterIncr,
	"entirely": boosterIncr, "especially": boosterIncr, "exceptionally": boosterIncr,
	"extremely": boosterIncr, "greatly": boosterIncr, "highly": boosterIncr,
	"hugely": boosterIncr, "incredibly": boosterIncr, "majorly": boosterIncr,
	"more": boosterIncr, "most": boosterIncr, "particularly": boosterIncr,
	"really": boosterIncr, "remarkably": boosterIncr, "sharply": boosterIncr,
	"significantly": boosterIncr, "so": boosterIncr, "substantially": boosterIncr,
	"totally": boosterIncr, "tremendously": boosterIncr, "very": boosterIncr,
	"almost": boosterDecr, "barely": boosterDecr, "hardly": boosterDecr,
	"less": boosterDecr, "little": boosterDecr, "marginally": boosterDecr,
	"modestly": boosterDecr, "occasionally": boosterDecr, "partly": boosterDecr,
	"scarcely": boosterDecr, "slightly": boosterDecr, "somewhat": boosterDecr,
}

// Valences are on a -4..4 scale.
var defaultLexicon = map[string]float64{
	// positive
	"accelerate": 1.2, "accelerates": 1.2, "advance": 1.3, "advances": 1.3,
	"agree": 1.5, "agreement": 1.4, "approval": 2.0, "approve": 1.9, "approved": 1.8,
	"approves": 1.8, "attractive": 1.9, "beat": 1.4, "beats": 1.4, "benefit": 2.0,
	"benefits": 1.9, "best": 3.2, "better": 1.9, "bolster": 1.6, "bolsters": 1.6,
	"boom": 2.1, "boost": 1.7, "boosts": 1.7, "breakthrough": 2.4, "bullish": 2.0,
	"confident": 2.2, "confidence": 2.3, "cure": 2.0, "deal": 0.4, "delight": 2.9,
	"easing": 1.1, "efficient": 1.8, "excellent": 2.7, "exceed": 1.6, "exceeds": 1.6,
	"expand": 1.1, "expands": 1.1, "expansion": 1.1, "favorable": 2.1, "gain": 2.4,
	"gains": 1.8, "good": 1.9, "great": 3.1, "grow": 1.5, "growing": 1.4,
	"grows": 1.4, "growth": 1.6, "happy": 2.7, "high": 0.8, "higher": 1.1,
	"hope": 1.9, "improve": 1.9, "improved": 2.1, "improvement": 2.0, "improves": 1.8,
	"innovative": 1.9, "jump": 1.0, "jumps": 1.0, "launch": 0.8, "lead": 0.9,
	"leader": 1.5, "leading": 1.0, "like": 1.5, "optimism": 2.5, "optimistic": 2.4,
	"outperform": 1.9, "outperforms": 1.9, "positive": 2.6, "praise": 2.6,
	"profit": 1.9, "profitable": 1.9, "profits": 1.9, "progress": 1.8, "rally": 1.9,
	"rallies": 1.9, "rebound": 1.5, "rebounds": 1.5, "record": 1.0, "recover": 1.6,
	"recovers": 1.6, "recovery": 1.4, "resilient": 1.8, "reward": 2.0, "rise": 1.3,
	"rises": 1.3, "rising": 1.2, "robust": 1.4, "soar": 2.4, "soars": 2.4,
	"solid": 1.6, "stable": 1.2, "strength": 2.2, "strong": 2.3, "stronger": 2.1,
	"success": 2.7, "successful": 2.8, "surge": 1.8, "surges": 1.8, "top": 0.8,
	"triumph": 3.0, "upbeat": 2.0, "upgrade": 1.8, "upgraded": 1.8, "upgrades": 1.8,
	"upside": 1.5, "win": 2.8, "wins": 2.7, "winner": 2.8, "won": 2.7,
	// negative
	"abuse": -3.2, "accuse": -1.9, "accused": -1.9, "allegation": -1.7,
	"allegations": -1.7, "bad": -2.5, "bankrupt": -2.6, "bankruptcy": -2.6,
	"bearish": -2.0, "breach": -2.0, "collapse": -2.5, "collapses": -2.5,
	"concern": -1.1, "concerns": -1.1, "crash": -1.7, "crashes": -1.7, "crisis": -3.1,
	"cut": -1.1, "cuts": -1.1, "damage": -2.2, "decline": -1.1, "declines": -1.1,
	"default": -1.8, "deficit": -1.7, "delay": -1.3, "delayed": -1.3, "delays": -1.3,
	"disappoint": -2.2, "disappointing": -2.2, "disappoints": -2.2, "downgrade": -1.8,
	"downgraded": -1.8, "downgrades": -1.8, "drop": -1.1, "drops": -1.1, "fail": -2.5,
	"failed": -2.3, "fails": -2.4, "failure": -2.4, "fall": -1.0, "falls": -1.0,
	"fear": -2.2, "fears": -2.2, "fine": -0.6, "fined": -1.6, "fraud": -2.8,
	"halt": -1.1, "halts": -1.1, "hurt": -2.4, "hurts": -2.4, "investigation": -1.0,
	"lawsuit": -1.3, "lawsuits": -1.3, "layoffs": -1.9, "lose": -1.7, "loses": -1.7,
	"loss": -1.3, "losses": -1.7, "low": -1.1, "lower": -1.2, "miss": -0.8,
	"misses": -0.9, "negative": -2.7, "penalty": -2.0, "plunge": -2.2,
	"plunges": -2.2, "poor": -2.1, "probe": -1.0, "problem": -1.7, "problems": -1.7,
	"recall": -1.1, "recalls": -1.1, "recession": -2.1, "risk": -1.1, "risks": -1.1,
	"scandal": -3.0, "selloff": -1.8, "shortfall": -1.6, "shrink": -1.2, "shrinks": -1.2,
	"sink": -1.6, "sinks": -1.6, "slash": -1.4, "slashes": -1.4, "slow": -0.8,
	"slowdown": -1.4, "slump": -1.9, "slumps": -1.9, "struggle": -2.0,
	"struggles": -2.0, "sue": -1.5, "sued": -1.5, "sues": -1.5, "tumble": -1.7,
	"tumbles": -1.7, "turmoil": -2.3, "uncertain": -1.2, "uncertainty": -1.4,
	"warn": -1.4, "warning": -1.4, "warns": -1.4, "weak": -1.9, "weaker": -1.9,
	"weakness": -1.8, "worse": -2.1, "worst": -3.1, "worry": -1.9, "worries": -1.8,
}
