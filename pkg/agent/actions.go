package agent

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"boxbox/pkg/logging"
)

// ActionKind enumerates the simulated social actions. The set is closed:
// dispatch is a switch over these constants, so an unsupported kind is a
// compile-time hole rather than a runtime lookup miss.
type ActionKind string

const (
	ActionReplyComment ActionKind = "reply_comment"
	ActionPostStatus   ActionKind = "post_status_update"
	ActionLike         ActionKind = "simulate_like"
	ActionMention      ActionKind = "mention"
)

var (
	ErrUnknownAction       = errors.New("unknown action kind")
	ErrMissingActionData   = errors.New("missing action data")
	ErrUnknownContextField = errors.New("unknown context field")
)

// ActionResult records the effect of a simulated action.
type ActionResult struct {
	Status  string `json:"status"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

// SocialActions simulates social-media interactions. Every action only
// logs its effect; nothing leaves the process.
type SocialActions struct {
	logger zerolog.Logger
}

func NewSocialActions() *SocialActions {
	return &SocialActions{logger: logging.Component("actions")}
}

// Perform dispatches to the handler for kind. Data fields an action needs
// but did not receive are a caller error.
func (a *SocialActions) Perform(kind ActionKind, data map[string]string) (ActionResult, error) {
	switch kind {
	case ActionReplyComment:
		return a.replyComment(data)
	case ActionPostStatus:
		return a.postStatusUpdate(data)
	case ActionLike:
		return a.simulateLike(data)
	case ActionMention:
		return a.mention(data)
	default:
		return ActionResult{}, fmt.Errorf("%w: %s", ErrUnknownAction, kind)
	}
}

func (a *SocialActions) replyComment(data map[string]string) (ActionResult, error) {
	comment, response := data["comment_text"], data["agent_response"]
	if comment == "" || response == "" {
		return ActionResult{}, fmt.Errorf("%w: reply_comment needs comment_text and agent_response", ErrMissingActionData)
	}
	a.logger.Info().
		Str("action", string(ActionReplyComment)).
		Str("comment", comment).
		Str("response", response).
		Msg("simulated action")
	return ActionResult{
		Status:  "success",
		Action:  string(ActionReplyComment),
		Details: fmt.Sprintf("Replied to comment %q with: %q", comment, response),
	}, nil
}

func (a *SocialActions) postStatusUpdate(data map[string]string) (ActionResult, error) {
	status := data["status_text"]
	if status == "" {
		return ActionResult{}, fmt.Errorf("%w: post_status_update needs status_text", ErrMissingActionData)
	}
	a.logger.Info().
		Str("action", string(ActionPostStatus)).
		Str("status", status).
		Msg("simulated action")
	return ActionResult{
		Status:  "success",
		Action:  string(ActionPostStatus),
		Details: fmt.Sprintf("Posted status update: %q", status),
	}, nil
}

func (a *SocialActions) simulateLike(data map[string]string) (ActionResult, error) {
	postID := data["post_id"]
	if postID == "" {
		return ActionResult{}, fmt.Errorf("%w: simulate_like needs post_id", ErrMissingActionData)
	}
	a.logger.Info().
		Str("action", string(ActionLike)).
		Str("post_id", postID).
		Msg("simulated action")
	return ActionResult{
		Status:  "success",
		Action:  string(ActionLike),
		Details: fmt.Sprintf("Liked post %s", postID),
	}, nil
}

func (a *SocialActions) mention(data map[string]string) (ActionResult, error) {
	text := data["mention_text"]
	if text == "" {
		return ActionResult{}, fmt.Errorf("%w: mention needs mention_text", ErrMissingActionData)
	}
	a.logger.Info().
		Str("action", string(ActionMention)).
		Str("mention", text).
		Msg("simulated action")
	return ActionResult{
		Status:  "success",
		Action:  string(ActionMention),
		Details: fmt.Sprintf("Mentioned: %s", text),
	}, nil
}
