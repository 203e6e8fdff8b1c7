package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/Kadabra/config"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	reportMainThreshold     = 3
	reportFollowupThreshold = 3
	reportGroupCount        = 3
	reportMaxWords          = 400
	summaryMaxWords         = 120
	reportMaxTokens         = 2048
)

const reportPromptHeader = `
You are a senior technical interviewer writing the final review of a practice
interview session. Using the context below, write a 300-400 word review as
PLAIN PROSE (no JSON, no markdown headings) with this structure:
- a short intro paragraph,
- feedback on each question in order,
- overall strengths,
- overall weaknesses,
- concrete, actionable tips,
- one closing line of encouragement.

Do not reveal model answers or solution content.

Session context:
`

// ReportCompiler aggregates session history into a bounded narrative review
// once completion thresholds are met. It recomputes and overwrites the
// report on every qualifying call; below threshold it does nothing.
type ReportCompiler interface {
	// CompileIfReady mutates session.FinalReport and session.Summary and
	// returns (report, true) when thresholds are met and compilation
	// succeeded; otherwise ("", false) with no mutation. The caller persists.
	CompileIfReady(ctx context.Context, session *model.Session) (string, bool)
}

type reportCompiler struct {
	gemini GeminiClient
	cfg    *config.Config
}

func NewReportCompiler(gemini GeminiClient, cfg *config.Config) ReportCompiler {
	return &reportCompiler{gemini: gemini, cfg: cfg}
}

// questionGroup is one question id's main turn plus its follow-up turn.
type questionGroup struct {
	qID      string
	main     *model.Turn
	followup *model.Turn
}

// lastQuestionGroups selects the last n distinct question ids, returned
// oldest-to-newest.
func lastQuestionGroups(session *model.Session, n int) []questionGroup {
	var ids []string
	seen := map[string]bool{}
	for i := len(session.Turns) - 1; i >= 0 && len(ids) < n; i-- {
		qid := session.Turns[i].QID
		if !seen[qid] {
			seen[qid] = true
			ids = append(ids, qid)
		}
	}
	// ids were collected newest-first; flip them.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	groups := make([]questionGroup, 0, len(ids))
	for _, qid := range ids {
		g := questionGroup{qID: qid}
		for i := range session.Turns {
			t := &session.Turns[i]
			if t.QID != qid {
				continue
			}
			switch t.Kind {
			case model.TurnKindMain:
				g.main = t
			case model.TurnKindFollowup:
				g.followup = t
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func snippet(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:maxWords], " ")
}

func describeTurn(sb *strings.Builder, label string, t *model.Turn) {
	if t == nil {
		fmt.Fprintf(sb, "  %s: (not asked)\n", label)
		return
	}
	fmt.Fprintf(sb, "  %s question: %s\n", label, snippet(t.QText, 40))
	if !t.Answered() {
		fmt.Fprintf(sb, "  %s answer: (not answered)\n", label)
		return
	}
	fmt.Fprintf(sb, "  %s answer: %s\n", label, snippet(t.AnswerText, 60))
	if t.Feedback != nil {
		fmt.Fprintf(sb, "  %s verdict: %s (confidence %.2f) - %s\n",
			label, t.Feedback.Classification, t.Feedback.Confidence, snippet(t.Feedback.Feedback, 50))
	}
}

func buildReportContext(session *model.Session) string {
	var sb strings.Builder
	if session.Meta.TargetRole != "" {
		fmt.Fprintf(&sb, "Candidate target role: %s\n", session.Meta.TargetRole)
	}
	if session.Meta.ExperienceLevel != "" {
		fmt.Fprintf(&sb, "Candidate experience level: %s\n", session.Meta.ExperienceLevel)
	}
	fmt.Fprintf(&sb, "Main questions answered: %d\n", session.MainQuestionsAnswered)
	fmt.Fprintf(&sb, "Follow-ups answered: %d\n", session.FollowupsAnswered)

	for i, g := range lastQuestionGroups(session, reportGroupCount) {
		fmt.Fprintf(&sb, "\nQuestion %d (%s):\n", i+1, g.qID)
		describeTurn(&sb, "main", g.main)
		describeTurn(&sb, "follow-up", g.followup)
	}
	return sb.String()
}

func (s *reportCompiler) CompileIfReady(ctx context.Context, session *model.Session) (string, bool) {
	if session.MainQuestionsAnswered < reportMainThreshold || session.FollowupsAnswered < reportFollowupThreshold {
		return "", false
	}

	prompt := reportPromptHeader + buildReportContext(session)
	start := time.Now()
	raw, err := s.gemini.Complete(ctx, prompt, CompletionOptions{
		Model:       s.cfg.GeminiModel,
		MaxTokens:   reportMaxTokens,
		Temperature: 0.4,
	})
	if err != nil {
		// A safe substitute exists (the plain acknowledgement), so a failed
		// compilation degrades to "not ready" and is retried on the next
		// qualifying answer.
		log.Error().Err(err).Str("sessionID", session.ID).Msg("Final report oracle call failed, skipping this turn")
		return "", false
	}

	report := truncateWords(raw, reportMaxWords)
	session.FinalReport = report
	session.Summary = truncateWords(report, summaryMaxWords)

	log.Info().Str("sessionID", session.ID).Dur("elapsed", time.Since(start)).
		Int("words", len(strings.Fields(report))).Msg("Compiled final session report")
	return report, true
}
