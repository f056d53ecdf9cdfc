package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// Keys of the prefs table.
const (
	KeyLanguage      = "device_lang"
	KeyScale         = "device_scale"
	KeyTheme         = "theme_id"
	KeyProfileType   = "profile_type"
	KeyActiveProfile = "active_profile"
	KeySessionToken  = "session_token"
)

// Pref returns the value stored under key, or "" if none.
func (s *Store) Pref(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pref %s: %w", key, err)
	}
	return v, nil
}

// SetPref stores value under key. An empty value removes the key.
func (s *Store) SetPref(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE key=?`, key); err != nil {
			return fmt.Errorf("delete pref %s: %w", key, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value); err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}

// DevicePrefs returns the stored device preferences. Missing keys are zero.
func (s *Store) DevicePrefs(ctx context.Context) (models.DevicePrefs, error) {
	var p models.DevicePrefs
	var err error
	if p.Language, err = s.Pref(ctx, KeyLanguage); err != nil {
		return p, err
	}
	if p.Theme, err = s.Pref(ctx, KeyTheme); err != nil {
		return p, err
	}
	if p.ProfileType, err = s.Pref(ctx, KeyProfileType); err != nil {
		return p, err
	}
	if p.ActiveProfile, err = s.Pref(ctx, KeyActiveProfile); err != nil {
		return p, err
	}
	scale, err := s.Pref(ctx, KeyScale)
	if err != nil {
		return p, err
	}
	if scale != "" {
		if n, convErr := strconv.Atoi(scale); convErr == nil {
			p.Scale = n
		} else {
			s.logger.Printf("WARNING: ignoring invalid %s %q", KeyScale, scale)
		}
	}
	return p, nil
}

// SaveDevicePrefs replaces the stored device preferences with p.
func (s *Store) SaveDevicePrefs(ctx context.Context, p models.DevicePrefs) error {
	scale := ""
	if p.Scale != 0 {
		scale = strconv.Itoa(p.Scale)
	}
	for _, kv := range [][2]string{
		{KeyLanguage, p.Language},
		{KeyScale, scale},
		{KeyTheme, p.Theme},
		{KeyProfileType, p.ProfileType},
		{KeyActiveProfile, p.ActiveProfile},
	} {
		if err := s.SetPref(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// SessionToken returns the persisted auth token, or "".
func (s *Store) SessionToken(ctx context.Context) (string, error) {
	return s.Pref(ctx, KeySessionToken)
}

// SetSessionToken persists token; "" clears it.
func (s *Store) SetSessionToken(ctx context.Context, token string) error {
	return s.SetPref(ctx, KeySessionToken, token)
}
