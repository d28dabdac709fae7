package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRaceContext() map[string]string {
	return map[string]string{
		"race_name":    "Monaco GP",
		"team":         "Mercedes",
		"result":       "P1",
		"car_feeling":  "solid",
		"weather":      "dry",
		"race_hashtag": "MonacoMagic",
		"team_hashtag": "TeamMercedes",
	}
}

func TestFormat_PostRace(t *testing.T) {
	r := NewRenderer(NewRegistry())

	out, err := r.Format(PostRace, postRaceContext())
	require.NoError(t, err)

	assert.Contains(t, out, "Monaco GP")
	assert.Contains(t, out, "#MonacoMagic")
	assert.Contains(t, out, "#TeamMercedes")
	assert.Contains(t, out, "challenging", "default sentiment applied")
}

func TestFormat_CallerOverridesDefault(t *testing.T) {
	r := NewRenderer(NewRegistry())

	ctx := postRaceContext()
	ctx["sentiment"] = "triumphant"
	out, err := r.Format(PostRace, ctx)
	require.NoError(t, err)

	assert.Contains(t, out, "triumphant")
	assert.NotContains(t, out, "challenging")
}

func TestFormat_Deterministic(t *testing.T) {
	r := NewRenderer(NewRegistry())

	first, err := r.Format(PostRace, postRaceContext())
	require.NoError(t, err)
	second, err := r.Format(PostRace, postRaceContext())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormat_MissingRequiredKeys(t *testing.T) {
	r := NewRenderer(NewRegistry())

	_, err := r.Format(ReplyFan, map[string]string{"fan_comment": "great drive!"})
	require.Error(t, err)

	var missing *MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ReplyFan, missing.Template)
	assert.Contains(t, missing.Keys, "topic")
}

func TestFormat_DefaultedKeyNotMissing(t *testing.T) {
	r := NewRenderer(NewRegistry())

	// tone and race_context are defaulted, so only the required
	// non-defaulted keys matter.
	out, err := r.Format(ReplyFan, map[string]string{
		"fan_comment": "great drive!",
		"topic":       "overtakes",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "positive")
	assert.Contains(t, out, "current situation")
}

func TestFormat_UnknownTemplate(t *testing.T) {
	r := NewRenderer(NewRegistry())

	_, err := r.Format("nonexistent", nil)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFormat_BodyKeyNeitherRequiredNorDefaulted(t *testing.T) {
	reg := NewRegistry()
	// {mood} appears in the body but is neither required nor defaulted:
	// the required-keys check passes, then substitution fails with the
	// same missing-keys error kind.
	require.NoError(t, reg.Register("moody", "Feeling {mood} about {topic}", []string{"topic"}, nil))

	r := NewRenderer(reg)
	_, err := r.Format("moody", map[string]string{"topic": "qualifying"})
	require.Error(t, err)

	var missing *MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"mood"}, missing.Keys)

	// Supplying the key renders fine.
	out, err := r.Format("moody", map[string]string{"topic": "qualifying", "mood": "confident"})
	require.NoError(t, err)
	assert.Equal(t, "Feeling confident about qualifying", out)
}

func TestFormat_ExtraKeysNonFatal(t *testing.T) {
	r := NewRenderer(NewRegistry())

	ctx := postRaceContext()
	ctx["completely_unrelated"] = "ignore me"
	out, err := r.Format(PostRace, ctx)
	require.NoError(t, err)
	assert.NotContains(t, out, "ignore me")
}

func TestFormat_DoesNotMutateCallerContext(t *testing.T) {
	r := NewRenderer(NewRegistry())

	ctx := map[string]string{"fan_comment": "nice one", "topic": "pit stops"}
	_, err := r.Format(ReplyFan, ctx)
	require.NoError(t, err)

	// Defaults are merged into a fresh map, never written back.
	assert.Equal(t, map[string]string{"fan_comment": "nice one", "topic": "pit stops"}, ctx)
}
