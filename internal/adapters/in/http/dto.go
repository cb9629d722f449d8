package http

import (
	"io"
	"net/http"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ingestResponse struct {
	OrderID   string `json:"orderId"`
	Duplicate bool   `json:"duplicate"`
}

type createOrderRequest struct {
	Customer struct {
		Name    string  `json:"name"`
		Phone   string  `json:"phone"`
		Address string  `json:"address"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"customer"`
	Items []struct {
		ProductID      string `json:"productId"`
		Name           string `json:"name"`
		Quantity       int    `json:"quantity"`
		UnitPriceCents int64  `json:"unitPriceCents"`
	} `json:"items"`
	DeliveryType  string  `json:"deliveryType"`
	PaymentMethod string  `json:"paymentMethod"`
	RestaurantLat float64 `json:"restaurantLat"`
	RestaurantLon float64 `json:"restaurantLon"`
}

// toCommand validates the request through the domain constructors.
func (r createOrderRequest) toCommand(tenantID kernel.UUID) (commands.CreateOrderCommand, error) {
	location, err := kernel.NewGeoPoint(r.Customer.Lat, r.Customer.Lon)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	customer, err := order.NewCustomer(
		kernel.NewUUID(), r.Customer.Name, r.Customer.Phone, r.Customer.Address, location)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	items := make([]order.Item, 0, len(r.Items))
	for _, line := range r.Items {
		productID, itemErr := kernel.UUIDFromString(line.ProductID)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		unitPrice, itemErr := kernel.NewMoney(line.UnitPriceCents)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		item, itemErr := order.NewItem(productID, line.Name, line.Quantity, unitPrice)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		items = append(items, item)
	}

	restaurantLocation, err := kernel.NewGeoPoint(r.RestaurantLat, r.RestaurantLon)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	return commands.NewCreateOrderCommand(
		kernel.NewUUID(), tenantID, customer, items,
		order.DeliveryType(r.DeliveryType), order.PaymentMethod(r.PaymentMethod),
		restaurantLocation)
}

type createOrderResponse struct {
	OrderID string `json:"orderId"`
}

type transitionRequest struct {
	Target  string `json:"target"`
	Role    string `json:"role"`
	ActorID string `json:"actorId"`
}

type driverRequest struct {
	DriverID string `json:"driverId"`
}

type paymentCallbackRequest struct {
	OrderID string `json:"orderId"`
}

type availableOrderResponse struct {
	OrderID          string  `json:"orderId"`
	CustomerAddress  string  `json:"customerAddress"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	TotalCents       int64   `json:"totalCents"`
	DeliveryFeeCents int64   `json:"deliveryFeeCents"`
	DistanceKm       float64 `json:"distanceKm"`
	EtaMinutes       int     `json:"etaMinutes"`
}

type onlineDriversResponse struct {
	OnlineDrivers int64 `json:"onlineDrivers"`
}

type statusChangeResponse struct {
	Status string `json:"status"`
	At     string `json:"at"`
	Actor  string `json:"actor"`
}

type driverLocationResponse struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	RecordedAt string  `json:"recordedAt"`
}

type trackOrderResponse struct {
	OrderID        string                  `json:"orderId"`
	Status         string                  `json:"status"`
	DeliveryType   string                  `json:"deliveryType"`
	History        []statusChangeResponse  `json:"history"`
	DriverID       *string                 `json:"driverId,omitempty"`
	DriverLocation *driverLocationResponse `json:"driverLocation,omitempty"`
}

// readBody reads the raw request body. Webhook signatures are computed over
// the exact bytes, so the body must not pass through echo's binder first.
func readBody(ctx echo.Context) ([]byte, error) {
	return io.ReadAll(ctx.Request().Body)
}

func badRequest(ctx echo.Context, message string) error {
	return jsonError(ctx, http.StatusBadRequest, message)
}

func jsonError(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, errorResponse{Code: code, Message: message})
}
