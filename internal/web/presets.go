package web

import (
	"encoding/json"
	"net/http"

	"github.com/peterkuimelis/bridgegen/internal/config"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
)

// PresetInfo is the JSON representation of a preset for the /api/presets endpoint.
type PresetInfo struct {
	Name         string                     `json:"name"`
	Description  string                     `json:"description,omitempty"`
	Boards       int                        `json:"boards,omitempty"`
	HCPKind      string                     `json:"hcpKind"`
	SuitKind     string                     `json:"suitKind"`
	HCP          constraint.HCPSet          `json:"hcp"`
	Distribution constraint.DistributionSet `json:"distribution"`
}

func presetInfos(presets []config.Preset) []PresetInfo {
	infos := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		// Presets are validated on load, so compile errors cannot happen here.
		pred, _, _ := p.Constraints().Compile()
		infos = append(infos, PresetInfo{
			Name:         p.Name,
			Description:  p.Description,
			Boards:       p.Boards,
			HCPKind:      pred.HCP.Kind.String(),
			SuitKind:     pred.Distribution.Kind.String(),
			HCP:          p.HCP,
			Distribution: p.Distribution,
		})
	}
	return infos
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(presetInfos(s.cfg.Presets))
}
