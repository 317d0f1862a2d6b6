package triage_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghadapter "github.com/prtriage/prtriage/internal/adapter/github"
	"github.com/prtriage/prtriage/internal/domain"
	"github.com/prtriage/prtriage/internal/usecase/review"
	"github.com/prtriage/prtriage/internal/usecase/skip"
	"github.com/prtriage/prtriage/internal/usecase/triage"
)

type fakeGitHub struct {
	prs       []domain.PullRequest
	diffs     map[int]string
	diffErr   error
	listErr   error
	reviews   []ghadapter.CreateReviewInput
	reviewErr error
}

func (f *fakeGitHub) ListOpenPullRequests(_ context.Context, _, _, _ string) ([]domain.PullRequest, error) {
	return f.prs, f.listErr
}

func (f *fakeGitHub) GetPullRequestDiff(_ context.Context, _, _ string, number int) (string, error) {
	if f.diffErr != nil {
		return "", f.diffErr
	}
	return f.diffs[number], nil
}

func (f *fakeGitHub) CreateReview(_ context.Context, input ghadapter.CreateReviewInput) (*ghadapter.CreateReviewResponse, error) {
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	f.reviews = append(f.reviews, input)
	return &ghadapter.CreateReviewResponse{ID: int64(len(f.reviews)), State: "SUBMITTED"}, nil
}

type fakeReviewer struct {
	verdict domain.Verdict
	calls   int
}

func (f *fakeReviewer) Review(_ context.Context, _ review.Request) domain.Verdict {
	f.calls++
	return f.verdict
}

type memoryIgnoreSet struct {
	ignored map[int]bool
	saved   bool
}

func (m *memoryIgnoreSet) Load() (map[int]bool, error) {
	out := map[int]bool{}
	for k, v := range m.ignored {
		out[k] = v
	}
	return out, nil
}

func (m *memoryIgnoreSet) Save(ignored map[int]bool) error {
	m.ignored = ignored
	m.saved = true
	return nil
}

type fakeEditor struct {
	result string
}

func (f *fakeEditor) Edit(_ string) (string, error) { return f.result, nil }

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func simplePR(number int) domain.PullRequest {
	return domain.PullRequest{
		Number:       number,
		Title:        "small fix",
		Author:       "alice",
		HTMLURL:      "https://github.test/pr/1",
		HeadSHA:      "abc",
		Additions:    3,
		Deletions:    1,
		ChangedFiles: 1,
	}
}

func bigPR(number int) domain.PullRequest {
	pr := simplePR(number)
	pr.Title = "big refactor"
	pr.Additions = 400
	pr.ChangedFiles = 12
	return pr
}

func newDriver(gh *fakeGitHub, rev *fakeReviewer, ignores *memoryIgnoreSet, input string, out *bytes.Buffer, opts func(*triage.DriverConfig)) *triage.Driver {
	cfg := triage.DriverConfig{
		GitHub:   gh,
		Reviewer: rev,
		Skip:     skip.NewDetector(),
		Ignores:  ignores,
		Input:    strings.NewReader(input),
		Output:   out,
	}
	if opts != nil {
		opts(&cfg)
	}
	return triage.NewDriver(cfg)
}

func TestRun_SimplePRApproved(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	rev := &fakeReviewer{}
	ignores := &memoryIgnoreSet{}
	var out bytes.Buffer

	d := newDriver(gh, rev, ignores, "a\n", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count(triage.OutcomeApproved))
	assert.Equal(t, 0, rev.calls, "simple PRs never reach the reviewer")
	require.Len(t, gh.reviews, 1)
	assert.Equal(t, ghadapter.EventApprove, gh.reviews[0].Event)
	assert.Contains(t, gh.reviews[0].Body, "+3/-1")
	assert.True(t, ignores.saved)
}

func TestRun_BigPRGetsAIReview(t *testing.T) {
	gh := &fakeGitHub{
		prs:   []domain.PullRequest{bigPR(2)},
		diffs: map[int]string{2: "+++ b/main.go\n@@ -1,1 +1,2 @@\n ctx\n+added\n"},
	}
	rev := &fakeReviewer{verdict: domain.Verdict{
		Action:   domain.ActionCommentOnly,
		Comments: []domain.Comment{{Path: "main.go", Line: 2, Content: "check this"}},
	}}
	ignores := &memoryIgnoreSet{}
	var out bytes.Buffer

	d := newDriver(gh, rev, ignores, "r\n", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, rev.calls)
	assert.Equal(t, 1, summary.Count(triage.OutcomeCommented))
	require.Len(t, gh.reviews, 1)
	assert.Equal(t, ghadapter.EventComment, gh.reviews[0].Event)
	require.Len(t, gh.reviews[0].Comments, 1)
	assert.Equal(t, "main.go", gh.reviews[0].Comments[0].Path)
	assert.Contains(t, out.String(), "comment_only (1 comment)")
}

func TestRun_IgnoredPRNotShown(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(5)}}
	ignores := &memoryIgnoreSet{ignored: map[int]bool{5: true}}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, ignores, "", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Empty(t, summary.Decisions)
	assert.Empty(t, gh.reviews)
	assert.Contains(t, out.String(), "ignore list")
}

func TestRun_IgnoreCommandPersists(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(7)}}
	ignores := &memoryIgnoreSet{}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, ignores, "i\n", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count(triage.OutcomeIgnored))
	assert.True(t, ignores.ignored[7])
}

func TestRun_SkipMarkerSkipsWithoutPrompt(t *testing.T) {
	pr := simplePR(3)
	pr.Body = "work in progress\n\n[skip triage]"
	gh := &fakeGitHub{prs: []domain.PullRequest{pr}}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count(triage.OutcomeSkipped))
	assert.Empty(t, gh.reviews)
	assert.Contains(t, out.String(), "opted out")
}

func TestRun_QuitStopsEarly(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1), simplePR(2)}}
	ignores := &memoryIgnoreSet{}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, ignores, "q\n", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Empty(t, summary.Decisions)
	assert.True(t, ignores.saved, "ignore set saves even on quit")
}

func TestRun_UnknownChoiceReprompts(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "x\ns\n", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Contains(t, out.String(), `Unknown choice "x"`)
	assert.Equal(t, 1, summary.Count(triage.OutcomeSkipped))
}

func TestRun_OpenStaysOnPR(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	opener := &fakeOpener{}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "o\ns\n", &out, func(cfg *triage.DriverConfig) {
		cfg.Opener = opener
	})
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://github.test/pr/1"}, opener.opened)
	assert.Equal(t, 1, summary.Count(triage.OutcomeSkipped))
}

func TestRun_CommentViaEditor(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "c\n", &out, func(cfg *triage.DriverConfig) {
		cfg.Editor = &fakeEditor{result: "Please add a test for the error path."}
	})
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count(triage.OutcomeCommented))
	require.Len(t, gh.reviews, 1)
	assert.Equal(t, ghadapter.EventComment, gh.reviews[0].Event)
	assert.Equal(t, "Please add a test for the error path.", gh.reviews[0].Body)
}

func TestRun_EditorTemplateLinesStripped(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "c\n", &out, func(cfg *triage.DriverConfig) {
		cfg.Editor = &fakeEditor{result: "<!-- Review comment for PR #1: small fix -->\n\nLooks fine, but add docs.\n"}
	})
	_, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	require.Len(t, gh.reviews, 1)
	assert.Equal(t, "Looks fine, but add docs.", gh.reviews[0].Body)
}

func TestRun_EmptyEditorCommentReprompts(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "c\ns\n", &out, func(cfg *triage.DriverConfig) {
		cfg.Editor = &fakeEditor{result: "   \n"}
	})
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Empty(t, gh.reviews)
	assert.Equal(t, 1, summary.Count(triage.OutcomeSkipped))
}

func TestRun_DiffFailureContinuesToNextPR(t *testing.T) {
	gh := &fakeGitHub{
		prs:     []domain.PullRequest{bigPR(1), simplePR(2)},
		diffErr: errors.New("boom"),
	}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "a\n", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count(triage.OutcomeFailed))
	assert.Equal(t, 1, summary.Count(triage.OutcomeApproved))
}

func TestRun_ListFailureIsFatal(t *testing.T) {
	gh := &fakeGitHub{listErr: errors.New("token expired")}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "", &out, nil)
	_, err := d.Run(context.Background(), "acme", "widgets", "alice")
	assert.Error(t, err)
}

func TestRun_NoOpenPRs(t *testing.T) {
	gh := &fakeGitHub{}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, &memoryIgnoreSet{}, "", &out, nil)
	summary, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	assert.Empty(t, summary.Decisions)
	assert.Contains(t, out.String(), "No open pull requests")
}

func TestRun_ExhaustedInputQuitsCleanly(t *testing.T) {
	gh := &fakeGitHub{prs: []domain.PullRequest{simplePR(1)}}
	ignores := &memoryIgnoreSet{}
	var out bytes.Buffer

	d := newDriver(gh, &fakeReviewer{}, ignores, "", &out, nil)
	_, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)
	assert.True(t, ignores.saved)
}

func TestRun_ApprovalMessageEditable(t *testing.T) {
	gh := &fakeGitHub{
		prs:   []domain.PullRequest{bigPR(9)},
		diffs: map[int]string{9: ""},
	}
	rev := &fakeReviewer{verdict: domain.Verdict{
		Action:          domain.ActionApprove,
		ApprovalMessage: "Drafted by the model.",
	}}
	var out bytes.Buffer

	d := newDriver(gh, rev, &memoryIgnoreSet{}, "a\n", &out, func(cfg *triage.DriverConfig) {
		cfg.Editor = &fakeEditor{result: "Edited by the human.\n"}
	})
	_, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	require.Len(t, gh.reviews, 1)
	assert.Equal(t, "Edited by the human.", gh.reviews[0].Body)
}

func TestRun_ApproveWithCommentsCarriesInline(t *testing.T) {
	gh := &fakeGitHub{
		prs:   []domain.PullRequest{bigPR(4)},
		diffs: map[int]string{4: ""},
	}
	rev := &fakeReviewer{verdict: domain.Verdict{
		Action:          domain.ActionApproveWithComments,
		ApprovalMessage: "Looks good overall.",
		Comments:        []domain.Comment{{Path: "a.go", Line: 10, Content: "nit"}},
	}}
	var out bytes.Buffer

	d := newDriver(gh, rev, &memoryIgnoreSet{}, "a\n", &out, nil)
	_, err := d.Run(context.Background(), "acme", "widgets", "alice")
	require.NoError(t, err)

	require.Len(t, gh.reviews, 1)
	assert.Equal(t, ghadapter.EventApprove, gh.reviews[0].Event)
	assert.Equal(t, "Looks good overall.", gh.reviews[0].Body)
	require.Len(t, gh.reviews[0].Comments, 1)
}
