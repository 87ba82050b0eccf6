package websocket

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetcast/internal/pkg/jwt"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/internal/utils"
)

// Peer identifies the remote side of an accepted connection
type Peer struct {
	Subject    string
	RemoteAddr string
}

// Manager upgrades HTTP requests to WebSocket connections, optionally gated by a JWT
type Manager struct {
	cfg         models.JWTConfig
	authEnabled bool
	upgrader    websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(jwtConfig models.JWTConfig, authEnabled bool) *Manager {
	return &Manager{
		cfg:         jwtConfig,
		authEnabled: authEnabled,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection authenticates, upgrades and hands the connection to handleClient.
// The connection is closed when handleClient returns.
func (m *Manager) HandleConnection(c echo.Context, handleClient func(Peer, *websocket.Conn) error) error {
	peer, err := m.authenticateClient(c)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return utils.UnauthorizedResponse(c, "Authorization token is required")
		}
		return utils.UnauthorizedResponse(c, "Invalid token")
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logger.Warn("WebSocket upgrade failed",
			logger.String("remote_addr", peer.RemoteAddr),
			logger.Err(err))
		return nil
	}
	defer ws.Close()

	return handleClient(peer, ws)
}

func (m *Manager) authenticateClient(c echo.Context) (Peer, error) {
	peer := Peer{RemoteAddr: c.RealIP()}
	if !m.authEnabled {
		return peer, nil
	}

	token := jwt.ExtractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if token == "" {
		token = c.QueryParam("token")
	}

	claims, err := jwt.ValidateToken(token, m.cfg.Secret, m.cfg.Issuer)
	if err != nil {
		logger.Warn("Token validation failed",
			logger.String("remote_addr", peer.RemoteAddr),
			logger.Err(err))
		return peer, err
	}

	peer.Subject = claims.Subject
	return peer, nil
}
