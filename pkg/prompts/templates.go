package prompts

// TemplateName identifies a prompt template. The constants below form the
// closed set the rest of the service is guaranteed to support; ad hoc
// names can still be registered at runtime for experimentation.
type TemplateName string

const (
	PostRace        TemplateName = "post_race"
	ReplyFan        TemplateName = "reply_fan"
	PracticeUpdate  TemplateName = "practice_update"
	MentionTeammate TemplateName = "mention_teammate"
	RaceStrategy    TemplateName = "race_strategy"
)

// builtin is a registration record for the default catalog.
type builtin struct {
	name     TemplateName
	body     string
	required []string
	defaults map[string]string
}

// builtinCatalog seeds every new registry. Bodies are LLM prompts in the
// driver's voice; the rendered text doubles as the fallback output.
var builtinCatalog = []builtin{
	{
		name: PostRace,
		body: "Write a {sentiment} social media post about the {race_name}. " +
			"Mention the {team} team. Result: {result}. " +
			"The car felt {car_feeling} in {weather} conditions. " +
			"Include hashtags: #{race_hashtag} #{team_hashtag}",
		required: []string{
			"race_name", "team", "result", "car_feeling",
			"weather", "race_hashtag", "team_hashtag",
		},
		defaults: map[string]string{"sentiment": "challenging"},
	},
	{
		name: ReplyFan,
		body: "Respond to a fan comment: \"{fan_comment}\". " +
			"The topic is {topic}. Tone: {tone}. " +
			"Reference {race_context}. Max length: 280 characters.",
		required: []string{"fan_comment", "topic"},
		defaults: map[string]string{
			"tone":         "positive",
			"race_context": "current situation",
		},
	},
	{
		name: RaceStrategy,
		body: "Outline the race strategy for {track}. " +
			"Starting tires: {tires}. Weather: {weather}. " +
			"Target stint length: {stint_length} laps.",
		required: []string{"track", "tires", "weather", "stint_length"},
	},
	{
		name: PracticeUpdate,
		body: "Create a practice session update from {track}. " +
			"Weather: {weather}. Lap times: {lap_times}. " +
			"Car feeling: {car_feeling}. Focus area: {focus_area}.",
		required: []string{"track", "weather", "lap_times", "car_feeling", "focus_area"},
	},
	{
		name: MentionTeammate,
		body: "Write a post congratulating {teammate_name} on {achievement}. " +
			"Mention the {team} team.",
		required: []string{"teammate_name", "achievement", "team"},
	},
}
