package service

import (
	"fmt"
	"strings"

	"retroscope/internal/adapters/llm"
	"retroscope/internal/core/feedback"
)

// Prompt display caps, in characters. Items over the cap are clipped and
// counted on the category's sampling record
const (
	promptCommitLen = 100
	promptReviewLen = 200
	promptIssueLen  = 150
)

const commitSystemPrompt = `You are an expert reviewer of Git commit messages.

A good commit message has a 50-72 character subject line, starts with an
imperative verb (Add, Fix, Update, Refactor, Remove), preferably follows the
Conventional Commits format (type(scope): subject), explains why in the body,
and references related issues or PRs. A poor message is a throwaway word
(fix, update, wip, tmp), too short or far too long, or lists what changed
without why.

Respond with JSON only, exactly this shape:
{
  "good_count": number,
  "poor_count": number,
  "suggestions": ["3-5 concrete, actionable suggestions"],
  "examples_good": [
    {"sha": "7-char hash", "message": "the message", "reason": "why it works"}
  ],
  "examples_poor": [
    {"sha": "7-char hash", "message": "the message", "reason": "why it falls short", "suggestion": "an improved message"}
  ]
}

Rules: at most 3 examples per list; every sampled message counts toward
exactly one of good_count or poor_count; no prose outside the JSON.`

const titleSystemPrompt = `You are an expert reviewer of pull request titles.

A clear title is 15-80 characters, states the change and its scope with a
specific verb, and is understandable without opening the PR. A vague title
is a bare word (fix, update), a filename list, or gives no hint of intent.

Respond with JSON only, exactly this shape:
{
  "clear_count": number,
  "vague_count": number,
  "suggestions": ["3-5 concrete guidelines for the team"],
  "examples_good": [
    {"number": pr_number, "title": "the title", "reason": "why it is clear", "score": 1-10}
  ],
  "examples_poor": [
    {"number": pr_number, "title": "the title", "reason": "why it is vague", "suggestion": "an improved title"}
  ]
}

Rules: at most 3 examples per list; every sampled title counts toward
exactly one of clear_count or vague_count; no prose outside the JSON.`

const reviewSystemPrompt = `You are an expert on collaboration and code review communication.

Classify each review comment's tone. Constructive: points at a concrete
problem and offers a direction, stays respectful, criticizes code not
people. Harsh: dismissive or commanding with no rationale or alternative.
Neutral: states a fact without guidance or emotion.

Respond with JSON only, exactly this shape:
{
  "constructive_count": number,
  "harsh_count": number,
  "neutral_count": number,
  "suggestions": ["3-5 team-wide communication improvements"],
  "examples_good": [
    {"pr_number": number, "author": "login", "comment": "the comment", "strengths": ["what works"]}
  ],
  "examples_improve": [
    {"pr_number": number, "author": "login", "comment": "the comment", "issues": ["what hurts"], "improved_version": "a better phrasing"}
  ]
}

Rules: at most 3 examples per list; every sampled comment counts toward
exactly one of the three counts; no prose outside the JSON.`

const issueSystemPrompt = `You are a project management expert assessing GitHub issue quality.

A well-described bug carries reproduction steps, expected versus actual
behavior, and environment details. A well-described feature request states
the problem, a proposed solution, and a use case. A poorly described issue
is missing the elements a maintainer needs to act on it.

Respond with JSON only, exactly this shape:
{
  "well_described_count": number,
  "poorly_described_count": number,
  "suggestions": ["3-5 issue-writing guidelines"],
  "examples_good": [
    {"number": issue_number, "title": "the title", "type": "bug|feature|documentation|question|other", "strengths": ["what is covered"], "completeness_score": 1-10}
  ],
  "examples_poor": [
    {"number": issue_number, "title": "the title", "type": "the type", "missing_elements": ["what is absent"], "suggestion": "how to improve it"}
  ]
}

Rules: infer the type from title and body; at most 3 examples per list;
every sampled issue counts toward exactly one of the two counts; no prose
outside the JSON.`

// clipPrompt truncates s to n runes for prompt display and reports the cut
func clipPrompt(s string, n int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= n {
		return s, false
	}
	return string(runes[:n]), true
}

func commitPrompt(sample []feedback.CommitSample) ([]llm.Message, int) {
	var b strings.Builder
	truncated := 0
	for i, c := range sample {
		line, cut := clipPrompt(c.Message, promptCommitLen)
		if cut {
			truncated++
		}
		fmt.Fprintf(&b, "%d. %s (SHA: %s)\n", i+1, line, shortSHA(c.SHA))
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: commitSystemPrompt},
		{Role: llm.RoleUser, Content: "Analyze the following commit messages:\n\n" + b.String()},
	}, truncated
}

func titlePrompt(sample []feedback.TitleSample) ([]llm.Message, int) {
	var b strings.Builder
	for i, t := range sample {
		fmt.Fprintf(&b, "%d. #%d: %s\n", i+1, t.Number, t.Title)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: titleSystemPrompt},
		{Role: llm.RoleUser, Content: "Analyze the following pull request titles:\n\n" + b.String()},
	}, 0
}

func reviewPrompt(sample []feedback.ReviewSample) ([]llm.Message, int) {
	var b strings.Builder
	truncated := 0
	for i, r := range sample {
		body, cut := clipPrompt(r.Body, promptReviewLen)
		if cut {
			truncated++
		}
		fmt.Fprintf(&b, "%d. (PR #%d, %s): %s\n", i+1, r.PullNumber, r.Author, body)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: reviewSystemPrompt},
		{Role: llm.RoleUser, Content: "Analyze the tone of the following review comments:\n\n" + b.String()},
	}, truncated
}

func issuePrompt(sample []feedback.IssueSample) ([]llm.Message, int) {
	var b strings.Builder
	truncated := 0
	for i, is := range sample {
		body, cut := clipPrompt(is.Body, promptIssueLen)
		if cut {
			truncated++
		}
		fmt.Fprintf(&b, "%d. #%d: %s\n   Body: %s\n", i+1, is.Number, is.Title, body)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: issueSystemPrompt},
		{Role: llm.RoleUser, Content: "Analyze the quality of the following issues:\n\n" + b.String()},
	}, truncated
}
