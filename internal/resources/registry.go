package resources

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/listing"
	"backoffice/internal/utils"
)

// Registry looks screens up by name.
type Registry struct {
	byName map[string]Resource
	order  []string
}

func NewRegistry(rs ...Resource) *Registry {
	r := &Registry{byName: map[string]Resource{}}
	for _, res := range rs {
		name := res.Spec().Name
		if _, dup := r.byName[name]; !dup {
			r.order = append(r.order, name)
		}
		r.byName[name] = res
	}
	return r
}

func (r *Registry) Get(name string) (Resource, error) {
	res, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.NotFoundError{Resource: "resource " + strconv.Quote(name)}
	}
	return res, nil
}

// Names returns the registered screen names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n].Spec())
	}
	return out
}

// Default registers every back-office screen. Amounts are exported in currency.
func Default(perPage, maxPerPage int, currency string) *Registry {
	money := func(v float64) string { return utils.FormatAmount(v, currency) }

	spec := func(sortFields []string, def string, dir domain.SortOrder, filters ...string) listing.QuerySpec {
		sorted := append([]string(nil), sortFields...)
		sort.Strings(sorted)
		return listing.QuerySpec{
			Filters:     filters,
			SortFields:  sorted,
			DefaultSort: def,
			DefaultDir:  dir,
			PerPage:     perPage,
			MaxPerPage:  maxPerPage,
		}
	}

	return NewRegistry(
		Screen[models.Booking]{
			Descriptor: Descriptor{
				Name:            "bookings",
				Title:           "Appointments",
				Endpoint:        "admin/bookings",
				Query:           spec([]string{"created_at", "scheduled_at", "total", "status"}, "created_at", domain.SortDesc, "status", "salon_id", "date_from", "date_to"),
				Columns:         []string{"Code", "Customer", "Salon", "Service", "Scheduled", "Status", "Total"},
				Updatable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.BookingStatusPayload{} },
			},
			Cells: func(b models.Booking) []string {
				return []string{b.Code, b.CustomerName, b.SalonName, b.ServiceName, stamp(b.ScheduledAt), b.Status, money(b.Total)}
			},
		},
		Screen[models.Complaint]{
			Descriptor: Descriptor{
				Name:            "complaints",
				Title:           "Complaints",
				Endpoint:        "complaints",
				Query:           spec([]string{"created_at", "status"}, "created_at", domain.SortDesc, "status"),
				Columns:         []string{"ID", "Customer", "Subject", "Status", "Created"},
				Updatable:       true,
				Deletable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.ComplaintReplyPayload{} },
			},
			Cells: func(c models.Complaint) []string {
				return []string{id(c.ID), c.CustomerName, c.Subject, c.Status, stamp(c.CreatedAt)}
			},
		},
		Screen[models.Gift]{
			Descriptor: Descriptor{
				Name:            "gifts",
				Title:           "Gift cards",
				Endpoint:        "gifts",
				Query:           spec([]string{"amount", "expires_at"}, "", "", "status"),
				Columns:         []string{"Code", "Sender", "Recipient", "Amount", "Status", "Expires"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.GiftPayload{} },
			},
			Cells: func(g models.Gift) []string {
				return []string{g.Code, g.SenderName, g.RecipientName, money(g.Amount), g.Status, stamp(g.ExpiresAt)}
			},
		},
		Screen[models.Salon]{
			Descriptor: Descriptor{
				Name:            "salons",
				Title:           "Salons",
				Endpoint:        "salons",
				Query:           spec([]string{"name", "rating", "city"}, "name", domain.SortAsc, "city", "active"),
				Columns:         []string{"ID", "Name", "City", "Phone", "Rating", "Active"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				ImageFolder:     "salons",
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.SalonPayload{} },
			},
			Cells: func(s models.Salon) []string {
				return []string{id(s.ID), s.Name, s.City, s.Phone, strconv.FormatFloat(s.Rating, 'f', 1, 64), yesNo(s.Active)}
			},
		},
		Screen[models.Service]{
			Descriptor: Descriptor{
				Name:            "services",
				Title:           "Services",
				Endpoint:        "services",
				Query:           spec([]string{"name", "price", "duration"}, "name", domain.SortAsc, "group_id", "active"),
				Columns:         []string{"ID", "Name", "Group", "Price", "Minutes", "Active"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				ImageFolder:     "services",
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.ServicePayload{} },
			},
			Cells: func(s models.Service) []string {
				return []string{id(s.ID), s.Name, id(s.GroupID), money(s.Price), strconv.Itoa(s.Duration), yesNo(s.Active)}
			},
		},
		OrderedScreen[models.ServiceGroup]{Screen[models.ServiceGroup]{
			Descriptor: Descriptor{
				Name:            "groups",
				Title:           "Service groups",
				Endpoint:        "groups",
				Query:           spec(nil, "orders", domain.SortAsc),
				Columns:         []string{"Order", "ID", "Name"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				Reorderable:     true,
				ImageFolder:     "groups",
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.ServiceGroupPayload{} },
			},
			Cells: func(g models.ServiceGroup) []string {
				return []string{strconv.FormatInt(g.Orders, 10), id(g.ID), g.Name}
			},
		}},
		Screen[models.Coupon]{
			Descriptor: Descriptor{
				Name:            "coupons",
				Title:           "Coupons",
				Endpoint:        "coupons",
				Query:           spec([]string{"code", "starts_at", "ends_at", "value"}, "starts_at", domain.SortDesc, "type", "active"),
				Columns:         []string{"Code", "Type", "Value", "Used", "Starts", "Ends", "Active"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.CouponPayload{} },
			},
			Cells: func(c models.Coupon) []string {
				used := strconv.Itoa(c.Used)
				if c.UsageLimit > 0 {
					used += "/" + strconv.Itoa(c.UsageLimit)
				}
				return []string{c.Code, c.Type, strconv.FormatFloat(c.Value, 'f', -1, 64), used, stamp(c.StartsAt), stamp(c.EndsAt), yesNo(c.Active)}
			},
		},
		Screen[models.Staff]{
			Descriptor: Descriptor{
				Name:            "staff",
				Title:           "Staff",
				Endpoint:        "staff",
				Query:           spec([]string{"name", "position"}, "name", domain.SortAsc, "salon_id", "active"),
				Columns:         []string{"ID", "Name", "Salon", "Position", "Phone", "Active"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				ImageFolder:     "staff",
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.StaffPayload{} },
			},
			Cells: func(s models.Staff) []string {
				return []string{id(s.ID), s.Name, id(s.SalonID), s.Position, s.Phone, yesNo(s.Active)}
			},
		},
		Screen[models.Review]{
			Descriptor: Descriptor{
				Name:            "reviews",
				Title:           "Reviews",
				Endpoint:        "reviews",
				Query:           spec([]string{"created_at", "rating"}, "created_at", domain.SortDesc, "salon_id", "rating", "visible"),
				Columns:         []string{"ID", "Salon", "Customer", "Rating", "Visible", "Created"},
				Updatable:       true,
				Deletable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.ReviewModerationPayload{} },
			},
			Cells: func(r models.Review) []string {
				return []string{id(r.ID), r.SalonName, r.CustomerName, strconv.Itoa(r.Rating), yesNo(r.Visible), stamp(r.CreatedAt)}
			},
		},
		Screen[models.Payment]{
			Descriptor: Descriptor{
				Name:            "payments",
				Title:           "Payments",
				Endpoint:        "payments",
				Query:           spec([]string{"paid_at", "amount"}, "paid_at", domain.SortDesc, "status", "method", "booking_id"),
				Columns:         []string{"ID", "Booking", "Method", "Status", "Amount", "Paid"},
				Updatable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.PaymentStatusPayload{} },
			},
			Cells: func(p models.Payment) []string {
				return []string{id(p.ID), id(p.BookingID), p.Method, p.Status, money(p.Amount), stamp(p.PaidAt)}
			},
		},
		Screen[models.Holiday]{
			Descriptor: Descriptor{
				Name:            "holidays",
				Title:           "Holidays",
				Endpoint:        "holidays",
				Query:           spec([]string{"from", "to"}, "from", domain.SortAsc, "salon_id"),
				Columns:         []string{"ID", "Title", "Salon", "From", "To"},
				Creatable:       true,
				Updatable:       true,
				Deletable:       true,
				RetainOnFailure: true,
				NewPayload:      func() any { return &models.HolidayPayload{} },
			},
			Cells: func(h models.Holiday) []string {
				salon := "all"
				if h.SalonID > 0 {
					salon = id(h.SalonID)
				}
				return []string{id(h.ID), h.Title, salon, h.From.Format(time.DateOnly), h.To.Format(time.DateOnly)}
			},
		},
		Screen[models.User]{
			Descriptor: Descriptor{
				Name:       "users",
				Title:      "Users",
				Endpoint:   "users",
				Query:      spec([]string{"name", "email", "created_at"}, "created_at", domain.SortDesc, "role", "status"),
				Columns:    []string{"ID", "Name", "Email", "Phone", "Role", "Status"},
				Creatable:  true,
				Updatable:  true,
				Deletable:  true,
				NewPayload: func() any { return &models.UserPayload{} },
			},
			Cells: func(u models.User) []string {
				return []string{id(u.ID), u.Name, u.Email, u.Phone, u.Role, u.Status}
			},
		},
	)
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func stamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return utils.FormatDateTime(*t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
