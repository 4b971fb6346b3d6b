package debate

// PresetTable looks up persona preset prompts by id. Unknown ids report false.
type PresetTable interface {
	PresetPrompt(id string) (string, bool)
}

// ResolvePersona returns the effective persona for a role: a non-empty
// override wins, then the prompt of a known preset, then def. An empty result
// means the role speaks without persona framing.
func ResolvePersona(override, presetID string, table PresetTable, def string) string {
	if override != "" {
		return override
	}
	if presetID != "" && table != nil {
		if prompt, ok := table.PresetPrompt(presetID); ok && prompt != "" {
			return prompt
		}
	}
	return def
}
