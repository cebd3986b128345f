package actions

import (
	"context"
	"errors"
	"slices"
	"time"

	catalogRepo "meetingroom/database/repository/catalog"
	reservationRepo "meetingroom/database/repository/reservation"
	"meetingroom/models"
	"meetingroom/services/booking"
	"meetingroom/services/location"

	"go.uber.org/zap"
)

// Action names. These are the wire contract of the planner and of /api/actions/:name.
const (
	ListBuildings       = "ListBuildings"
	ListFloors          = "ListFloors"
	ListRooms           = "ListRooms"
	CheckAvailability   = "CheckAvailability"
	CreateBooking       = "CreateBooking"
	UpdateBooking       = "UpdateBooking"
	CancelBooking       = "CancelBooking"
	GetUserReservations = "GetUserReservations"
)

const defaultDaysAhead = 7

// Handler runs one action. Expected failures come back as a result with OK=false or as
// a *models.DomainError; any other error is a hard failure.
type Handler func(ctx context.Context, params models.Params) (*models.ActionResult, error)

// Registry binds action names to handlers over the catalog and the lifecycle manager.
type Registry struct {
	Catalog  catalogRepo.CatalogRepository
	Resolver *location.Resolver
	Manager  *booking.Manager
	Now      func() time.Time
	Logger   *zap.Logger

	handlers map[string]Handler
}

func NewRegistry(catalog catalogRepo.CatalogRepository, manager *booking.Manager, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		Catalog:  catalog,
		Resolver: location.NewResolver(catalog),
		Manager:  manager,
		Now:      time.Now,
		Logger:   logger,
	}
	r.handlers = map[string]Handler{
		ListBuildings:       r.listBuildings,
		ListFloors:          r.listFloors,
		ListRooms:           r.listRooms,
		CheckAvailability:   r.checkAvailability,
		CreateBooking:       r.createBooking,
		UpdateBooking:       r.updateBooking,
		CancelBooking:       r.cancelBooking,
		GetUserReservations: r.getUserReservations,
	}
	return r
}

// Names lists the registered actions, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Invoke runs the named action.
func (r *Registry) Invoke(ctx context.Context, name string, params models.Params) (*models.ActionResult, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, models.NewDomainError(models.UnsupportedIntent, "지원하지 않는 동작입니다: %s", name)
	}
	if params == nil {
		params = models.Params{}
	}
	r.Logger.Debug("invoking action", zap.String("action", name), zap.Any("params", params))
	return h(ctx, params)
}

func (r *Registry) listBuildings(ctx context.Context, _ models.Params) (*models.ActionResult, error) {
	buildings, err := r.Catalog.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ActionResult{OK: true, Buildings: buildings}, nil
}

type buildingInput struct {
	Building models.LocationRef `mapstructure:"building"`
}

func (r *Registry) listFloors(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in buildingInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	buildingID, err := r.Resolver.ResolveBuilding(ctx, in.Building)
	if err != nil {
		return nil, err
	}
	floors, err := r.Catalog.ListFloors(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return &models.ActionResult{OK: true, BuildingID: buildingID, Floors: floors}, nil
}

type floorInput struct {
	Building models.LocationRef `mapstructure:"building"`
	Floor    models.LocationRef `mapstructure:"floor"`
}

func (r *Registry) listRooms(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in floorInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	buildingID, err := r.Resolver.ResolveBuilding(ctx, in.Building)
	if err != nil {
		return nil, err
	}
	floorID, err := r.Resolver.ResolveFloor(ctx, buildingID, in.Floor)
	if err != nil {
		return nil, err
	}
	rooms, err := r.Catalog.ListRooms(ctx, buildingID, floorID)
	if err != nil {
		return nil, err
	}
	entries := make([]models.RoomEntry, 0, len(rooms))
	for name, id := range rooms {
		entries = append(entries, models.RoomEntry{Name: name, RoomID: id})
	}
	slices.SortFunc(entries, func(a, b models.RoomEntry) int { return a.RoomID - b.RoomID })
	return &models.ActionResult{OK: true, BuildingID: buildingID, FloorID: floorID, Rooms: entries}, nil
}

type checkInput struct {
	Building models.LocationRef `mapstructure:"building"`
	Floor    models.LocationRef `mapstructure:"floor"`
	Room     models.LocationRef `mapstructure:"room"`
	Start    string             `mapstructure:"start"`
	End      string             `mapstructure:"end"`
}

func (r *Registry) checkAvailability(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in checkInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := missingFields([2]string{"start", in.Start}, [2]string{"end", in.End}); err != nil {
		return nil, err
	}
	scope, err := r.Resolver.ResolveScope(ctx, in.Building, in.Floor, in.Room)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	availability, err := r.Manager.CheckAvailability(ctx, scope, start, end)
	if err != nil {
		return nil, err
	}
	available := availability.Available
	res := &models.ActionResult{OK: true, Available: &available}
	if !available {
		res.ConflictReservationID = availability.ConflictID
		res.Suggestions = slots(availability.Suggestions)
	}
	return res, nil
}

type createInput struct {
	Building models.LocationRef `mapstructure:"building"`
	Floor    models.LocationRef `mapstructure:"floor"`
	Room     models.LocationRef `mapstructure:"room"`
	UserName string             `mapstructure:"user_name"`
	Purpose  string             `mapstructure:"purpose"`
	Title    string             `mapstructure:"title"`
	Start    string             `mapstructure:"start"`
	End      string             `mapstructure:"end"`
}

func (r *Registry) createBooking(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in createInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := missingFields(
		[2]string{"user_name", in.UserName},
		[2]string{"title", in.Title},
		[2]string{"start", in.Start},
		[2]string{"end", in.End},
	); err != nil {
		return nil, err
	}
	scope, err := r.Resolver.ResolveScope(ctx, in.Building, in.Floor, in.Room)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	out, err := r.Manager.Create(ctx, booking.CreateRequest{
		Scope:    scope,
		UserName: in.UserName,
		Purpose:  in.Purpose,
		Title:    in.Title,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return nil, err
	}
	return outcomeResult(out), nil
}

type updateInput struct {
	ReservationID string             `mapstructure:"reservation_id"`
	Building      models.LocationRef `mapstructure:"building"`
	Floor         models.LocationRef `mapstructure:"floor"`
	Room          models.LocationRef `mapstructure:"room"`
	Start         *string            `mapstructure:"start"`
	End           *string            `mapstructure:"end"`
	Title         *string            `mapstructure:"title"`
	Purpose       *string            `mapstructure:"purpose"`
	UserName      *string            `mapstructure:"user_name"`
}

func (r *Registry) updateBooking(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in updateInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := missingFields([2]string{"reservation_id", in.ReservationID}); err != nil {
		return nil, err
	}
	if _, err := booking.ParseReservationID(in.ReservationID); err != nil {
		return nil, err
	}

	var changes booking.Changes
	if !in.Building.IsZero() || !in.Floor.IsZero() || !in.Room.IsZero() {
		existing, err := r.Manager.Get(ctx, in.ReservationID)
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return &models.ActionResult{OK: false, Code: models.NotFound, Message: booking.MsgNotFound}, nil
		}
		if err != nil {
			return nil, err
		}
		scope, err := r.resolveRelative(ctx, existing.Scope(), in)
		if err != nil {
			return nil, err
		}
		changes.Scope = &scope
	}
	if in.Start != nil {
		t, err := models.ParseISO(*in.Start)
		if err != nil {
			return nil, err
		}
		changes.Start = &t
	}
	if in.End != nil {
		t, err := models.ParseISO(*in.End)
		if err != nil {
			return nil, err
		}
		changes.End = &t
	}
	changes.Title, changes.Purpose, changes.UserName = in.Title, in.Purpose, in.UserName

	out, err := r.Manager.Update(ctx, in.ReservationID, changes)
	if err != nil {
		return nil, err
	}
	return outcomeResult(out), nil
}

// resolveRelative resolves a partial location against the reservation's current room:
// omitted levels keep their current id and are re-validated under the new parents.
func (r *Registry) resolveRelative(ctx context.Context, current models.RoomScope, in updateInput) (models.RoomScope, error) {
	scope := current
	var err error
	if !in.Building.IsZero() {
		if scope.BuildingID, err = r.Resolver.ResolveBuilding(ctx, in.Building); err != nil {
			return scope, err
		}
	}

	switch {
	case !in.Floor.IsZero():
		if scope.FloorID, err = r.Resolver.ResolveFloor(ctx, scope.BuildingID, in.Floor); err != nil {
			return scope, err
		}
	case scope.BuildingID != current.BuildingID && !in.Room.IsZero():
		return r.Resolver.ResolveScope(ctx, models.RefByID(scope.BuildingID), models.LocationRef{}, in.Room)
	}

	room := in.Room
	if room.IsZero() {
		room = models.RefByID(current.RoomID)
	}
	if scope.RoomID, err = r.Resolver.ResolveRoom(ctx, scope.BuildingID, scope.FloorID, room); err != nil {
		return scope, err
	}
	return scope, nil
}

type cancelInput struct {
	ReservationID string `mapstructure:"reservation_id"`
}

func (r *Registry) cancelBooking(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in cancelInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := missingFields([2]string{"reservation_id", in.ReservationID}); err != nil {
		return nil, err
	}
	out, err := r.Manager.Cancel(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	return outcomeResult(out), nil
}

type userReservationsInput struct {
	UserName  string             `mapstructure:"user_name"`
	DaysAhead *int               `mapstructure:"days_ahead"`
	Building  models.LocationRef `mapstructure:"building"`
}

func (r *Registry) getUserReservations(ctx context.Context, params models.Params) (*models.ActionResult, error) {
	var in userReservationsInput
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := missingFields([2]string{"user_name", in.UserName}); err != nil {
		return nil, err
	}
	days := defaultDaysAhead
	if in.DaysAhead != nil {
		days = *in.DaysAhead
	}
	if days < 0 {
		return nil, models.NewDomainError(models.InvalidRequest, "days_ahead는 0 이상이어야 합니다.")
	}

	var buildingID *int
	if !in.Building.IsZero() {
		id, err := r.Resolver.ResolveBuilding(ctx, in.Building)
		if err != nil {
			return nil, err
		}
		buildingID = &id
	}

	today := models.DayStart(models.Civil(r.Now()))
	reservations, err := r.Manager.ListForUser(ctx, in.UserName, today, today.AddDate(0, 0, days), buildingID)
	if err != nil {
		return nil, err
	}
	items := make([]models.ReservationSummary, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, res.Summary())
	}
	count := len(items)
	return &models.ActionResult{OK: true, Count: &count, Items: items}, nil
}

func parseRange(startLiteral, endLiteral string) (time.Time, time.Time, error) {
	start, err := models.ParseISO(startLiteral)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := models.ParseISO(endLiteral)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, models.NewDomainError(models.InvalidRequest, "종료시각은 시작시각 이후여야 합니다.")
	}
	return start, end, nil
}

func slots(ranges []models.TimeRange) []models.Slot {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]models.Slot, len(ranges))
	for i, tr := range ranges {
		out[i] = tr.ToSlot()
	}
	return out
}

func outcomeResult(out booking.Outcome) *models.ActionResult {
	res := &models.ActionResult{
		OK:            out.OK,
		Message:       out.Message,
		ReservationID: out.ReservationID,
	}
	if !out.OK {
		res.Code = out.Code
		res.ConflictReservationID = out.ConflictID
		res.Suggestions = slots(out.Suggestions)
	}
	return res
}
