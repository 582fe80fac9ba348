package handlers

import (
	"context"
	"errors"
	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/services"
	"log"
	"net/http"
	"time"
)

// Planner is the planning entry point the handler depends on.
type Planner interface {
	Plan(ctx context.Context, req services.PlanRequest) (*domain.PlanResult, error)
}

type OptimizeHandler struct {
	Planner Planner
}

// Optimize assigns the posted delivery orders to trucks and returns one
// shipment per loaded truck, followed by the unassigned bucket when non-empty.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := obs.RequestID(r.Context())

	var body dto.OptimizeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	planReq, idx, err := buildPlanRequest(reqID, body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("req_id=%s build plan request failed: %v", reqID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Printf(
		"req_id=%s optimize request trucks=%d dest_locations=%d delivery_orders=%d priority=%s",
		reqID, len(planReq.Vehicles), len(planReq.Locations), len(planReq.Orders), planReq.Mode,
	)

	result, err := h.Planner.Plan(r.Context(), planReq)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("req_id=%s plan shipments failed: %v", reqID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := buildResponse(result, idx)

	unassigned := 0
	if result.Unassigned != nil {
		unassigned = len(result.Unassigned.OrderIDs)
	}
	log.Printf(
		"req_id=%s plan_id=%s optimize response shipments=%d unassigned=%d dur=%dms",
		reqID, result.PlanID, len(result.Shipments), unassigned, time.Since(start).Milliseconds(),
	)

	w.Header().Set("X-Plan-Id", result.PlanID)
	writeJSON(w, r, http.StatusOK, res)
}

func buildResponse(result *domain.PlanResult, idx idIndex) []any {
	res := make([]any, 0, len(result.Shipments)+1)

	for _, s := range result.Shipments {
		out := dto.ShipmentResponse{
			IDTruck:              idx.vehicle(s.VehicleID),
			DeliveryOrders:       make([]dto.DeliveryOrderRef, 0, len(s.OrderIDs)),
			LocationRoutes:       make([]dto.LocationRouteRef, 0, len(s.Stops)),
			AllCoords:            s.Coords,
			TotalTime:            s.TotalTime,
			TotalTimeWithWaiting: s.TotalTimeWithWaiting,
			TotalDist:            s.TotalDistance,
			AdditionalInfo:       make([]dto.StopInfo, 0, len(s.Stops)),
			CurrentCapacity:      s.CurrentCapacity,
			MaxCapacity:          s.MaxCapacity,
		}
		if out.AllCoords == nil {
			out.AllCoords = [][]float64{}
		}
		for _, id := range s.OrderIDs {
			out.DeliveryOrders = append(out.DeliveryOrders, dto.DeliveryOrderRef{DeliveryOrderID: idx.order(id)})
		}
		for _, stop := range s.Stops {
			locID := idx.location(stop.Location.ID)
			out.LocationRoutes = append(out.LocationRoutes, dto.LocationRouteRef{LocationID: locID})
			out.AdditionalInfo = append(out.AdditionalInfo, dto.StopInfo{
				LocDestID:      locID,
				Queue:          stop.Queue,
				ETA:            domain.FormatClock(stop.ETA),
				TravelTime:     stop.TravelTime,
				TravelDistance: stop.TravelDistance,
			})
		}
		res = append(res, out)
	}

	if result.Unassigned != nil && len(result.Unassigned.OrderIDs) > 0 {
		bucket := dto.UnassignedResponse{
			IDTruck:        dto.NumericID(-1),
			DeliveryOrders: make([]dto.DeliveryOrderRef, 0, len(result.Unassigned.OrderIDs)),
		}
		for _, id := range result.Unassigned.OrderIDs {
			bucket.DeliveryOrders = append(bucket.DeliveryOrders, dto.DeliveryOrderRef{DeliveryOrderID: idx.order(id)})
		}
		res = append(res, bucket)
	}

	return res
}
