package notifications

import "github.com/hilthontt/melody/internal/domain"

type markReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

type markReadResponse struct {
	Updated int64 `json:"updated"`
}

type settingsRequest struct {
	Enabled         *bool `json:"enabled"`
	NewReleases     *bool `json:"new_releases"`
	Recommendations *bool `json:"recommendations"`
	System          *bool `json:"system"`
}

func (r settingsRequest) patch() domain.SettingsPatch {
	return domain.SettingsPatch{
		Enabled:         r.Enabled,
		NewReleases:     r.NewReleases,
		Recommendations: r.Recommendations,
		System:          r.System,
	}
}
