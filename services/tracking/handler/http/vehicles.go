package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/internal/utils"
	"github.com/piresc/fleetcast/services/tracking"
)

// VehicleHandler handles HTTP requests for the current fleet snapshot
type VehicleHandler struct {
	trackingUC tracking.TrackingUC
}

// NewVehicleHandler creates a new vehicle HTTP handler
func NewVehicleHandler(trackingUC tracking.TrackingUC) *VehicleHandler {
	return &VehicleHandler{
		trackingUC: trackingUC,
	}
}

// ListVehicles returns the snapshot, optionally narrowed to one geohash cell.
// With neighbors=true the eight surrounding cells are included as well.
func (h *VehicleHandler) ListVehicles(c echo.Context) error {
	snap := h.trackingUC.Snapshot(c.Request().Context())

	if cell := strings.ToLower(strings.TrimSpace(c.QueryParam("geohash"))); cell != "" {
		if !utils.ValidGeohash(cell) {
			return utils.BadRequestResponse(c, "invalid geohash")
		}
		cells := []string{cell}
		if withNeighbors, _ := strconv.ParseBool(c.QueryParam("neighbors")); withNeighbors {
			cells = append(cells, utils.GetNeighbors(cell)...)
		}

		filtered := make([]models.LocationRecord, 0, len(snap.Vehicles))
		for _, v := range snap.Vehicles {
			if inAnyCell(v, cells) {
				filtered = append(filtered, v)
			}
		}
		snap.Vehicles = filtered
	}

	return utils.SuccessResponse(c, http.StatusOK, "", snap)
}

// GetVehicle returns the latest record of one vehicle
func (h *VehicleHandler) GetVehicle(c echo.Context) error {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		return utils.BadRequestResponse(c, "vehicle id is required")
	}

	rec, err := h.trackingUC.GetVehicle(c.Request().Context(), vehicleID)
	if err != nil {
		if errors.Is(err, tracking.ErrVehicleNotFound) {
			return utils.NotFoundResponse(c, "vehicle not found")
		}
		logger.Error("Failed to get vehicle",
			logger.String("vehicle_id", vehicleID),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "failed to get vehicle")
	}

	return utils.SuccessResponse(c, http.StatusOK, "", rec)
}

func inAnyCell(rec models.LocationRecord, cells []string) bool {
	for _, cell := range cells {
		if utils.InCell(rec.Latitude, rec.Longitude, cell) {
			return true
		}
	}
	return false
}
