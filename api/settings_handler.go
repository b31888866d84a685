package api

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// SettingsResponse is the body of the settings endpoints.
type SettingsResponse struct {
	Settings   journal.Settings `json:"settings"`
	IsScanning bool             `json:"is_scanning"`
}

// SettingsUpdate carries a partial settings document. Fields absent from
// the JSON keep their stored values.
type SettingsUpdate struct {
	Settings json.RawMessage `json:"settings"`
}

// handleGetSettings returns the caller's settings. Unknown users get the
// defaults.
func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	user, err := s.svc.Users.GetUser(c.Context(), userID(c))
	if storage.IsNotFound(err) {
		return c.JSON(SettingsResponse{Settings: journal.DefaultSettings()})
	}
	if err != nil {
		return s.storeError(c, err, "User not found", "failed to load settings")
	}
	return c.JSON(SettingsResponse{Settings: user.Settings, IsScanning: user.Scanning})
}

// handleUpdateSettings merges the update onto the stored settings. The
// first update for an unknown id registers it as an active user.
func (s *Server) handleUpdateSettings(c *fiber.Ctx) error {
	var update SettingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx := c.Context()
	id := userID(c)

	user, err := s.svc.Users.GetUser(ctx, id)
	switch {
	case storage.IsNotFound(err):
		now := time.Now().UTC()
		user = &journal.User{
			ID:        id,
			Active:    true,
			Settings:  journal.DefaultSettings(),
			CreatedAt: now,
			UpdatedAt: now,
		}
	case err != nil:
		return s.storeError(c, err, "User not found", "failed to load settings")
	}

	settings := user.Settings
	if len(update.Settings) > 0 {
		if err := json.Unmarshal(update.Settings, &settings); err != nil {
			return badRequest(c, "invalid settings")
		}
	}
	user.Settings = settings

	if err := s.svc.Users.PutUser(ctx, user); err != nil {
		return s.storeError(c, err, "User not found", "failed to save settings")
	}

	return c.JSON(SettingsResponse{Settings: user.Settings, IsScanning: user.Scanning})
}
