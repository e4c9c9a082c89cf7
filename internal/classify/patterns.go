package classify

// Built-in pattern tables. All three are ordered lists evaluated
// top-to-bottom: topic order fixes the label order in results,
// sentiment order is the priority cascade, failure order fixes the
// reported kind order. Patterns run against redacted text only.

var builtinTopics = []struct {
	name     string
	patterns []string
}{
	{"Technical/Coding", []string{
		`(?i)\b(python|javascript|typescript|java|c\+\+|rust|golang|ruby)\b`,
		`(?i)\b(code|function|class|method|api|endpoint|docker|kubernetes|git)\b`,
		`(?i)\b(debug|error|exception|stack trace|bug|fix|refactor)\b`,
		`(?i)\b(programming|development|software|script|algorithm)\b`,
	}},
	{"AI/ML", []string{
		`(?i)\b(machine learning|neural network|deep learning|transformer)\b`,
		`(?i)\b(model|training|inference|embeddings|vector|llm)\b`,
		`(?i)\b(artificial intelligence|nlp|computer vision)\b`,
		`(?i)\b(prompt|fine-?tun\w*|dataset|optimization)\b`,
	}},
	{"Healthcare", []string{
		`(?i)\b(medical|healthcare|hospital|cardiac)\b`,
		`(?i)\b(doctor|physician|appointment|emergency|treatment)\b`,
		`(?i)\b(medication|prescription|diagnosis|symptoms)\b`,
	}},
	{"Philosophy", []string{
		`(?i)\b(consciousness|philosophy|wisdom|collective)\b`,
		`(?i)\b(mindfulness|awareness|presence|being)\b`,
	}},
	{"Creative/Art", []string{
		`(?i)\b(music|art|creative|image|video)\b`,
		`(?i)\b(production|studio|design|composition|visual)\b`,
		`(?i)\b(poetry|writing|storytelling|narrative)\b`,
	}},
	{"Personal/Life", []string{
		`(?i)\b(family|relationship|personal|feeling|emotion)\b`,
		`(?i)\b(holiday|vacation|travel)\b`,
		`(?i)\b(advice|guidance|support)\b`,
	}},
	{"Infrastructure", []string{
		`(?i)\b(server|deployment|infrastructure|container)\b`,
		`(?i)\b(architecture|system design|scaling)\b`,
		`(?i)\b(database|postgres|mongodb|redis)\b`,
		`(?i)\b(nginx|cloud|aws|azure|gcp)\b`,
	}},
	{"Data Analysis", []string{
		`(?i)\b(data|analysis|statistics|metrics|analytics)\b`,
		`(?i)\b(csv|excel|json|sql|query)\b`,
	}},
	{"Documentation", []string{
		`(?i)\b(documentation|docs|readme|guide|tutorial)\b`,
		`(?i)\b(explain|clarify|describe|outline)\b`,
		`(?i)\b(technical writing|specification|requirements)\b`,
	}},
	{"Debugging", []string{
		`(?i)\b(debug|troubleshoot|diagnose|investigate)\b`,
		`(?i)\b(error|exception|traceback|failing|broken)\b`,
		`(?i)\b(logs|logging|monitoring|observability)\b`,
	}},
	{"Security/Privacy", []string{
		`(?i)\b(security|privacy|encryption|authentication)\b`,
		`(?i)\b(vulnerability|exploit|breach|attack)\b`,
		`(?i)\b(gdpr|compliance|data protection)\b`,
	}},
}

// Sentiment cascade order: the first category with any matching
// pattern wins, so urgency markers outrank polite positives and strong
// labels outrank their generic versions.
var builtinSentiments = []struct {
	name     Sentiment
	patterns []string
}{
	{SentimentUrgent, []string{
		`(?i)\b(urgent|emergency|asap|immediately|critical)\b`,
		`(?i)\b(deadline|time-sensitive|rush|quickly)\b`,
		`!{2,}|⚠️|🚨|‼️`,
	}},
	{SentimentVeryNegative, []string{
		`(?i)\b(terrible|horrible|awful|useless|disaster|catastrophe)\b`,
		`(?i)\b(hate|angry|furious|completely broken)\b`,
		`😠|💔|😡|🤬`,
	}},
	{SentimentNegative, []string{
		`(?i)\b(wrong|failed|broken|issue|problem)\b`,
		`(?i)\b(doesn't work|not working|frustrated|confused)\b`,
		`😞|👎|❌`,
	}},
	{SentimentVeryPositive, []string{
		`(?i)\b(amazing|excellent|perfect|brilliant|outstanding|fantastic)\b`,
		`(?i)\b(love it|absolutely|phenomenal|incredible|wonderful)\b`,
		`🔥|✨|💯|🎉|🚀|⭐`,
	}},
	{SentimentPositive, []string{
		`(?i)\b(great|good|nice|helpful|thanks|appreciate|useful)\b`,
		`(?i)\b(works|working|solved|fixed|better)\b`,
		`😊|👍|👌|✅|💪`,
	}},
	{SentimentCollaborative, []string{
		`(?i)\b(let's|we can|together|collaborate|partnership)\b`,
		`(?i)\b(team|work with|joint|cooperative)\b`,
		`🤝|💫`,
	}},
	{SentimentQuestioning, []string{
		`(?i)\b(why|how|what|when|where|unclear)\b`,
		`(?i)\b(can you|could you|would you|please explain)\b`,
		`❓|🤔`,
	}},
	{SentimentNeutral, []string{
		`(?i)\b(okay|fine|alright|understood|noted|got it)\b`,
		`(?i)\b(interesting|makes sense)\b`,
	}},
}

var builtinFailures = []struct {
	name     string
	severity Severity
	patterns []string
}{
	{"Hallucination", SeverityHigh, []string{
		`(?i)\b(that's not true|incorrect|didn't say|made up)\b`,
		`(?i)\b(hallucinating|fabricated|inaccurate|false)\b`,
		`(?i)\b(never said|not what i|completely wrong)\b`,
	}},
	{"Unnecessary Refusal", SeverityMedium, []string{
		`(?i)\b(won't help|can't assist|unable to|against guidelines)\b`,
		`(?i)\b(harmful|inappropriate|cannot provide)\b`,
		`(?i)\b(not allowed|prohibited|restricted)\b`,
	}},
	{"Formatting Issues", SeverityLow, []string{
		`(?i)\b(formatting|markdown|display|render)\b`,
		`(?i)\b(code block|syntax|layout)\b`,
	}},
	{"Repetition", SeverityMedium, []string{
		`(?i)\b(repeating|said that already|duplicate)\b`,
		`(?i)\b(circular|loop|same thing|redundant)\b`,
	}},
	{"Misunderstanding", SeverityMedium, []string{
		`(?i)\b(didn't understand|misunderstood|clarify)\b`,
		`(?i)\b(what i meant|not what i asked|missed the point)\b`,
	}},
	{"Performance Theater", SeverityLow, []string{
		`(?i)\b(too formal|corporate speak|hedging|verbose)\b`,
		`(?i)\b(over-explaining|preamble)\b`,
		`(?i)\b(cut the|just answer|get to the point)\b`,
	}},
	{"Tool Misuse", SeverityHigh, []string{
		`(?i)\b(wrong tool|should have searched|didn't search)\b`,
		`(?i)\b(tool error|failed to fetch|api error)\b`,
		`(?i)\b(why didn't you|forgot to use)\b`,
	}},
	{"Context Loss", SeverityHigh, []string{
		`(?i)\b(forgot|lost context|earlier conversation)\b`,
		`(?i)\b(already told you|keep forgetting)\b`,
	}},
	{"Accuracy Error", SeverityHigh, []string{
		`(?i)\b(factually wrong|incorrect information|outdated)\b`,
		`(?i)\b(not accurate|misinformation|error in)\b`,
	}},
	{"Incomplete Response", SeverityMedium, []string{
		`(?i)\b(didn't finish|cut off|incomplete|partial)\b`,
		`(?i)\b(where's the rest|finish this)\b`,
	}},
	{"Ignored Instructions", SeverityHigh, []string{
		`(?i)\b(asked you not to|told you to|ignored|didn't follow)\b`,
		`(?i)\b(specifically said|explicitly requested)\b`,
	}},
}
