package responder

import "strings"

// ArticlesMarker separates the instructional header from the rendered posts.
const ArticlesMarker = "Tiktok Articles:"

// Topics lists the topic categories the model may assign.
var Topics = []string{
	"Social and Economy",
	"Infrastructure and Transportation",
	"Public Health",
	"Environment and Disaster",
	"Safety and Crime",
	"Government and Public Policy",
	"Technology and Innovation",
	"City Planning and Housing",
	"Education and Culture",
	"Tourism and Entertainment",
	"Ecology and Green Spaces",
}

// Sentiments lists the sentiment classes the model may assign.
var Sentiments = []string{
	"Positive",
	"Neutral",
	"Negative",
}

// Audiences lists the target audience categories the model may assign.
var Audiences = []string{
	"Traditional Market Vendors",
	"Business Owners",
	"Local Government",
	"General Public",
	"Healthcare Workers",
	"Environmental Agencies",
	"Public Transport Users",
	"Tourists",
	"Students and Educators",
	"Technology Enthusiasts",
	"Safety and Security Agencies",
}

// Regions lists the affected regions the model may assign.
var Regions = []string{
	"DKI Jakarta",
	"South Jakarta",
	"North Jakarta",
	"East Jakarta",
	"West Jakarta",
	"Central Jakarta",
}

// MaxUrgency is the upper bound of the urgency score; the lower bound is 0.
const MaxUrgency = 100

// ClassifyHeader is the fixed instruction block preceding every batch of posts.
const ClassifyHeader = `Given a list of Tiktok post, predict the following categories for each item: topic classification, urgency level, sentiment, target audience, affected region and Capture contextual or descriptive terms that support the main theme. Output should be in JSON format with each article's uuid included. 

Guidelines:


1. Topic Classification: Choose one of the following categories based on the main issue addressed:
   - Social and Economy
   - Infrastructure and Transportation
   - Public Health
   - Environment and Disaster
   - Safety and Crime
   - Government and Public Policy
   - Technology and Innovation
   - City Planning and Housing
   - Education and Culture
   - Tourism and Entertainment
   - Ecology and Green Spaces

2. Urgency Level: Provide a score from 0 to 100, where 100 indicates the highest urgency. This score represents how quickly the issue needs to be addressed to minimize its impact.

3. Sentiment: Classify sentiment as one of the following:
   - Positive
   - Neutral
   - Negative

4. Target Audience: Identify the primary groups affected by or interested in the news. Use the following categories:
   - Traditional Market Vendors
   - Business Owners
   - Local Government
   - General Public
   - Healthcare Workers
   - Environmental Agencies
   - Public Transport Users
   - Tourists
   - Students and Educators
   - Technology Enthusiasts
   - Safety and Security Agencies

5. Affected Region: Classify the region affected by the news as one of the following:
   - DKI Jakarta (for issues that generally affect all of Jakarta)
   - South Jakarta
   - North Jakarta
   - East Jakarta
   - West Jakarta
   - Central Jakarta
6. Contextual Keywords: Words and phrases that represent key themes, brands, products, individuals, locations, or technical specifications

Return the output in JSON format
Output:
[{
"uuid":<string>,
"topic_classification":<string>,
"urgency_level":<0-100>,
"sentiment":<string>,
"target_audience":<list of target>,
"affected_region":<string>,
"contextual_content": "This is a brief summary of the content related to the topic, capturing the main ideas and context. using indonesia language",
"contextual_keywords":<Top 5 list of contextual keyword or phrases in Indonesia Language>
}]

Process each news article separately using its uuid as an identifier.

` + ArticlesMarker + "\n"

// ComposePrompt appends the rendered posts to ClassifyHeader. The result is
// deterministic for a given input and construction never fails; malformed or
// empty records are embedded as they are.
func ComposePrompt(posts []PostRecord) string {
	rendered := RenderPosts(posts)

	var sb strings.Builder
	sb.Grow(len(ClassifyHeader) + len(rendered))
	sb.WriteString(ClassifyHeader)
	sb.WriteString(rendered)
	return sb.String()
}
