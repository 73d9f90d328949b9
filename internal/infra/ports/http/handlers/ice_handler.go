package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pion/webrtc/v4"

	"github.com/ostanin/huddle/internal/application/config"
)

type IceHandler struct {
	cfg *config.Config
}

func NewIceHandler(cfg *config.Config) *IceHandler {
	return &IceHandler{cfg: cfg}
}

// IceServers hands clients the ICE server list they need to bootstrap the
// peer-to-peer transport. TURN credentials are minted per request with
// coturn's static-auth-secret scheme and expire after an hour.
func (h *IceHandler) IceServers(c echo.Context) error {
	servers := []webrtc.ICEServer{
		{URLs: h.cfg.StunURLs},
	}

	if h.cfg.Turn.Enabled() {
		expiration := time.Now().Add(time.Hour).Unix()
		username := fmt.Sprintf("%d", expiration)

		mac := hmac.New(sha1.New, []byte(h.cfg.Turn.Secret))
		mac.Write([]byte(username))
		password := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		servers = append(servers, webrtc.ICEServer{
			URLs: []string{
				fmt.Sprintf("turn:%s?transport=udp", h.cfg.Turn.Host),
				fmt.Sprintf("turn:%s?transport=tcp", h.cfg.Turn.Host),
			},
			Username:   username,
			Credential: password,
		})
	}

	return c.JSON(http.StatusOK, servers)
}
