package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetcast/internal/pkg/models"
	pkgws "github.com/piresc/fleetcast/internal/pkg/websocket"
	httpHandler "github.com/piresc/fleetcast/services/tracking/handler/http"
	wsHandler "github.com/piresc/fleetcast/services/tracking/handler/websocket"
	"github.com/piresc/fleetcast/services/tracking/mocks"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockTrackingUC(ctrl)
	h := NewHandler(
		httpHandler.NewVehicleHandler(mockUC),
		wsHandler.NewTrackingHandler(context.Background(), mockUC, pkgws.NewManager(models.JWTConfig{}, false), models.TrackingConfig{}),
	)

	e := echo.New()
	h.RegisterRoutes(e)

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	assert.True(t, routes["GET /vehicles"])
	assert.True(t, routes["GET /vehicles/:id"])
	assert.True(t, routes["GET /ws/locations"])
}

func TestRegisterRoutes_ServesSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockTrackingUC(ctrl)
	mockUC.EXPECT().Snapshot(gomock.Any()).Return(models.Snapshot{Version: 1, Vehicles: []models.LocationRecord{}})

	h := NewHandler(
		httpHandler.NewVehicleHandler(mockUC),
		wsHandler.NewTrackingHandler(context.Background(), mockUC, pkgws.NewManager(models.JWTConfig{}, false), models.TrackingConfig{}),
	)
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"version":1,"vehicles":[]}}`, rec.Body.String())
}
