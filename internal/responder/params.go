package responder

import (
	"maps"
	"slices"
)

// GenerationParams holds the sampling configuration sent with every request.
type GenerationParams struct {
	Temperature float32
	TopP        float32
	TopK        float32
}

// HarmCategory names a provider-side content filtering category.
type HarmCategory string

const (
	HarmDangerousContent HarmCategory = "dangerous_content"
	HarmHarassment       HarmCategory = "harassment"
	HarmHateSpeech       HarmCategory = "hate_speech"
	HarmSexuallyExplicit HarmCategory = "sexually_explicit"
)

// HarmCategories lists every category a SafetyPolicy covers.
var HarmCategories = []HarmCategory{
	HarmDangerousContent,
	HarmHarassment,
	HarmHateSpeech,
	HarmSexuallyExplicit,
}

// BlockThreshold controls how aggressively a category is filtered.
type BlockThreshold string

const (
	BlockNone           BlockThreshold = "block_none"
	BlockOnlyHigh       BlockThreshold = "block_only_high"
	BlockMediumAndAbove BlockThreshold = "block_medium_and_above"
	BlockLowAndAbove    BlockThreshold = "block_low_and_above"
	BlockOff            BlockThreshold = "off"
)

// SafetyPolicy maps each harm category to its block threshold.
type SafetyPolicy map[HarmCategory]BlockThreshold

// PermissivePolicy returns a policy with every category set to BlockNone.
func PermissivePolicy() SafetyPolicy {
	p := make(SafetyPolicy, len(HarmCategories))
	for _, c := range HarmCategories {
		p[c] = BlockNone
	}
	return p
}

// Categories returns the policy's categories in sorted order.
func (p SafetyPolicy) Categories() []HarmCategory {
	return slices.Sorted(maps.Keys(p))
}
