package rest

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantsim/internal/api/websocket"
	"plantsim/internal/simulation"
	"plantsim/internal/types"
)

// GET /sensordata
func (s *Server) getSensorData(c *gin.Context) {
	c.JSON(http.StatusOK, s.lm.Fleet().GetSnapshot())
}

// GET /status
func (s *Server) getFactoryStatus(c *gin.Context) {
	fleet := s.lm.Fleet()

	stateCounts := fleet.GetStateCounts()
	errorCounts := fleet.GetErrorCounts()
	snapshot := fleet.GetSnapshot()
	total := fleet.MachineCount()

	var sampleTimestamp interface{}
	for _, reading := range snapshot {
		sampleTimestamp = reading.Timestamp
		break
	}

	efficiency := 0.0
	if total > 0 {
		efficiency = math.Round(float64(stateCounts[simulation.StateActive])/float64(total)*1000) / 10
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp":          sampleTimestamp,
		"total_machines":     total,
		"machine_states":     stateCounts,
		"active_errors":      errorCounts,
		"overall_efficiency": efficiency,
	})
}

// GET /machine/:id
func (s *Server) getMachine(c *gin.Context) {
	machineID := c.Param("id")

	snapshot := s.lm.Fleet().GetSnapshot()
	reading, ok := snapshot[machineID]
	if !ok {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("MACHINE_404", "Machine not found", machineID))
		return
	}

	c.JSON(http.StatusOK, reading)
}

// POST /machine/:id/force-state
func (s *Server) forceMachineState(c *gin.Context) {
	machineID := c.Param("id")

	var req struct {
		State string `json:"state" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("MACHINE_400", "Invalid request body", err.Error()))
		return
	}

	state, err := simulation.ParseMachineState(req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("MACHINE_400", "Invalid state", err.Error()))
		return
	}

	if !s.lm.Fleet().ForceState(machineID, state) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("MACHINE_404", "Machine not found", machineID))
		return
	}

	s.logger.Info("Machine state forced via API",
		zap.String("machine_id", machineID),
		zap.String("state", req.State))

	s.wsHub.Broadcast(websocket.NewMachineStateMessage(machineID, string(state)))

	c.JSON(http.StatusOK, gin.H{
		"message": "Machine state changed",
		"machine": machineID,
		"state":   string(state),
	})
}

// GET /errors
func (s *Server) getErrorDetails(c *gin.Context) {
	snapshot := s.lm.Fleet().GetSnapshot()

	errors := make([]gin.H, 0)
	for machineID, reading := range snapshot {
		if reading.State != simulation.StateError {
			continue
		}
		errors = append(errors, gin.H{
			"machine_id":         machineID,
			"error_code":         reading.ErrorCode,
			"error_description":  reading.ErrorDescription,
			"product_type":       reading.ProductType,
			"timestamp":          reading.Timestamp,
			"temperature":        reading.Temperature,
			"pressure":           reading.Pressure,
			"energy_consumption": reading.EnergyConsumption,
			"vibration":          reading.Vibration,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_errors": len(errors),
		"errors":       errors,
	})
}

// POST /simulation/speed
func (s *Server) setSimulationSpeed(c *gin.Context) {
	var req struct {
		Speed *float64 `json:"speed" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("SIM_400", "Invalid request body", err.Error()))
		return
	}

	speed := *req.Speed
	if speed < 0.1 || speed > 10.0 {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("SIM_400", "Speed must be between 0.1 and 10.0", speed))
		return
	}

	s.lm.Fleet().SetSpeed(speed)

	c.JSON(http.StatusOK, gin.H{
		"message": "Simulation speed updated",
		"speed":   speed,
	})
}
