package music

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const lavalinkAddrEnvVar = "HIBIKI_LAVALINK_ADDR"
const lavalinkPasswordEnvVar = "HIBIKI_LAVALINK_PASSWORD"
const lavalinkSessionEnvVar = "HIBIKI_LAVALINK_SESSION_ID"
const lavalinkSessionDefault = "hibiki"
const lavalinkTimeout = 10 * time.Second

//ErrNoMatches is returned when a search query matches no tracks.
var ErrNoMatches = errors.New("music: no tracks matched the query")

//Track is one playable track as reported by the audio sidecar.
type Track struct {
	Encoded string    `json:"encoded"`
	Info    TrackInfo `json:"info"`
}

//TrackInfo carries the display metadata for a track.
type TrackInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Length int64  `json:"length"`
	URI    string `json:"uri"`
}

//DisplayLength formats the track length for embeds.
func (i TrackInfo) DisplayLength() string {
	d := time.Duration(i.Length) * time.Millisecond
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

//LavalinkClient is a thin REST client for the Lavalink audio sidecar. Track
//search and playback are requested over its v4 HTTP API; the audio itself
//never touches this process.
type LavalinkClient struct {
	baseURL   string
	password  string
	sessionID string
	http      *http.Client
}

//InitLavalink creates a client for the sidecar named by the relevant
//environment variables.
func InitLavalink() (*LavalinkClient, error) {
	addr, exists := os.LookupEnv(lavalinkAddrEnvVar)
	if !exists {
		logrus.Errorf("`%v` env variable was not set.", lavalinkAddrEnvVar)
		return nil, fmt.Errorf("`%v` env variable was not set", lavalinkAddrEnvVar)
	}
	password, exists := os.LookupEnv(lavalinkPasswordEnvVar)
	if !exists {
		logrus.Errorf("`%v` env variable was not set.", lavalinkPasswordEnvVar)
		return nil, fmt.Errorf("`%v` env variable was not set", lavalinkPasswordEnvVar)
	}
	sessionID, exists := os.LookupEnv(lavalinkSessionEnvVar)
	if !exists {
		sessionID = lavalinkSessionDefault
	}
	return &LavalinkClient{
		baseURL:   strings.TrimSuffix(addr, "/"),
		password:  password,
		sessionID: sessionID,
		http:      &http.Client{Timeout: lavalinkTimeout},
	}, nil
}

type loadResult struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

//SearchTracks resolves a query to a list of candidate tracks. Plain text is
//run through the sidecar's youtube search; URLs are loaded directly.
func (c *LavalinkClient) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	identifier := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		identifier = "ytsearch:" + query
	}
	endpoint := fmt.Sprintf("%s/v4/loadtracks?identifier=%s", c.baseURL, url.QueryEscape(identifier))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var result loadResult
	err = c.do(req, &result)
	if err != nil {
		return nil, err
	}

	switch result.LoadType {
	case "track":
		var track Track
		err = json.Unmarshal(result.Data, &track)
		if err != nil {
			return nil, fmt.Errorf("failed to decode track result: %w", err)
		}
		return []Track{track}, nil
	case "search":
		var tracks []Track
		err = json.Unmarshal(result.Data, &tracks)
		if err != nil {
			return nil, fmt.Errorf("failed to decode search results: %w", err)
		}
		if len(tracks) == 0 {
			return nil, ErrNoMatches
		}
		return tracks, nil
	case "playlist":
		var playlist struct {
			Tracks []Track `json:"tracks"`
		}
		err = json.Unmarshal(result.Data, &playlist)
		if err != nil {
			return nil, fmt.Errorf("failed to decode playlist result: %w", err)
		}
		if len(playlist.Tracks) == 0 {
			return nil, ErrNoMatches
		}
		return playlist.Tracks, nil
	case "empty":
		return nil, ErrNoMatches
	default:
		return nil, fmt.Errorf("music: track load failed with type %v", result.LoadType)
	}
}

//PlayTrack tells the sidecar to start playing a track on a guild's player.
func (c *LavalinkClient) PlayTrack(ctx context.Context, guildID string, track Track) error {
	body := map[string]interface{}{
		"track": map[string]interface{}{"encoded": track.Encoded},
	}
	return c.updatePlayer(ctx, guildID, body)
}

//StopPlayback tells the sidecar to stop the guild's player.
func (c *LavalinkClient) StopPlayback(ctx context.Context, guildID string) error {
	body := map[string]interface{}{
		"track": map[string]interface{}{"encoded": nil},
	}
	return c.updatePlayer(ctx, guildID, body)
}

//UpdateVoice forwards the guild's voice server credentials to the sidecar so
//it can connect to the voice channel on the bot's behalf.
func (c *LavalinkClient) UpdateVoice(ctx context.Context, guildID, voiceSessionID, token, endpoint string) error {
	body := map[string]interface{}{
		"voice": map[string]interface{}{
			"token":     token,
			"endpoint":  endpoint,
			"sessionId": voiceSessionID,
		},
	}
	return c.updatePlayer(ctx, guildID, body)
}

func (c *LavalinkClient) updatePlayer(ctx context.Context, guildID string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v4/sessions/%s/players/%s", c.baseURL, c.sessionID, guildID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *LavalinkClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", c.password)
	resp, err := c.http.Do(req)
	if err != nil {
		logrus.Warnf("Lavalink request to %v failed due to error %v", req.URL.Path, err)
		return fmt.Errorf("lavalink request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.Warnf("Lavalink request to %v returned status %v", req.URL.Path, resp.StatusCode)
		return fmt.Errorf("lavalink request returned status %v", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
