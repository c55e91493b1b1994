package screen

import (
	"context"
	"strings"
	"time"

	"restaurant-listing-admin/internal/domain"
	"restaurant-listing-admin/internal/form"
	"restaurant-listing-admin/internal/listing"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/internal/notify"
	errs "restaurant-listing-admin/pkg/errors"
	"restaurant-listing-admin/pkg/events"
	"restaurant-listing-admin/pkg/logging"
	"restaurant-listing-admin/pkg/metrics"
)

// Controller dispatches form submissions and deletes to the repository and
// keeps the listing, form session and notifications consistent around them.
type Controller struct {
	repo    domain.RestaurantRepository
	store   *listing.Store
	session *form.Session
	audit   events.EventStore
	logger  *logging.ComponentLogger

	submits *metrics.Counter
	deletes *metrics.Counter
	failed  *metrics.Counter
}

// NewController wires the mutation path. The audit store may be nil, in
// which case no events are recorded.
func NewController(repo domain.RestaurantRepository, store *listing.Store, session *form.Session, audit events.EventStore, logger *logging.Logger, reg *metrics.Registry) *Controller {
	c := &Controller{
		repo:    repo,
		store:   store,
		session: session,
		audit:   audit,
	}
	if logger != nil {
		c.logger = logger.WithComponent("screen")
	}
	if reg != nil {
		c.submits = reg.Counter("restaurant_submits_total", "Restaurant create/update submissions")
		c.deletes = reg.Counter("restaurant_deletes_total", "Restaurant deletions")
		c.failed = reg.Counter("restaurant_mutations_failed_total", "Failed restaurant mutations")
	}
	return c
}

// Submit validates and persists the current form buffer. In edit mode it
// updates the targeted restaurant, otherwise it inserts a new one. On
// success the session is reset and the listing refreshed; on failure the
// buffer is left intact so the user can correct and retry.
func (c *Controller) Submit(ctx context.Context, n notify.Notifier) error {
	buffer := c.session.Buffer()
	editID, editing := c.session.EditTarget()

	failMsg := notify.MsgCreateFailed
	if editing {
		failMsg = notify.MsgUpdateFailed
	}

	if err := validateBuffer(buffer); err != nil {
		n.Error(failMsg)
		return err
	}

	input := serializeBuffer(buffer)

	var (
		id  = editID
		err error
	)
	if editing {
		err = c.repo.UpdateRestaurantCtx(ctx, editID, input)
	} else {
		id, err = c.repo.InsertRestaurantCtx(ctx, input)
	}
	if err != nil {
		if c.failed != nil {
			c.failed.Inc(1)
		}
		if c.logger != nil {
			c.logger.Error("restaurant submit failed", err,
				logging.Bool("editing", editing))
		}
		n.Error(failMsg)
		return err
	}

	if c.submits != nil {
		c.submits.Inc(1)
	}
	if editing {
		n.Success(notify.MsgUpdated)
	} else {
		n.Success(notify.MsgCreated)
	}

	c.appendAudit(ctx, submitEvent(id, editing, input))
	c.session.Close()
	c.store.Refresh(ctx)

	return nil
}

// Delete removes a restaurant after the confirm callback approves it.
// A declined confirmation performs no repository call at all.
func (c *Controller) Delete(ctx context.Context, id int64, confirm func() bool, n notify.Notifier) error {
	if confirm == nil || !confirm() {
		return nil
	}
	name := ""
	if r, ok := c.store.Get(id); ok {
		name = r.Name
	}

	if err := c.repo.DeleteRestaurantCtx(ctx, id); err != nil {
		if c.failed != nil {
			c.failed.Inc(1)
		}
		if c.logger != nil {
			c.logger.Error("restaurant delete failed", err, logging.Int64("id", id))
		}
		n.Error(notify.MsgDeleteFailed)
		return err
	}

	if c.deletes != nil {
		c.deletes.Inc(1)
	}
	n.Success(notify.MsgDeleted)

	c.appendAudit(ctx, events.RestaurantDeleted{
		Base: events.Base{Ts: time.Now(), RID: id},
		Name: name,
	})

	// A deleted restaurant also discards any edit in progress for it.
	if editID, editing := c.session.EditTarget(); editing && editID == id {
		c.session.Close()
	}
	c.store.Refresh(ctx)

	return nil
}

func (c *Controller) appendAudit(ctx context.Context, e events.Event) {
	if c.audit == nil {
		return
	}
	if err := c.audit.Append(ctx, e); err != nil && c.logger != nil {
		c.logger.Warn("audit append failed",
			logging.String("event_type", e.Type()),
			logging.Error(err))
	}
}

func validateBuffer(b form.Buffer) error {
	if strings.TrimSpace(b.Name) == "" {
		return errs.NewValidation("screen.Submit", "name is required", nil)
	}
	if strings.TrimSpace(b.Location) == "" {
		return errs.NewValidation("screen.Submit", "location is required", nil)
	}
	return nil
}

// serializeBuffer converts the form buffer into the persisted shape. Food
// type selections join with ", " and empty optionals become NULL.
func serializeBuffer(b form.Buffer) *models.RestaurantInput {
	return &models.RestaurantInput{
		Name:         strings.TrimSpace(b.Name),
		Location:     strings.TrimSpace(b.Location),
		FoodType:     optional(form.JoinFoodTypes(b.FoodTypes)),
		Municipality: optional(b.Municipality),
		Description:  optional(b.Description),
		ImageURL:     optional(b.ImageURL),
	}
}

func submitEvent(id int64, editing bool, in *models.RestaurantInput) events.Event {
	base := events.Base{Ts: time.Now(), RID: id}
	if editing {
		return events.RestaurantUpdated{
			Base:         base,
			Name:         in.Name,
			FoodType:     in.FoodType,
			Location:     in.Location,
			Municipality: in.Municipality,
		}
	}
	return events.RestaurantCreated{
		Base:         base,
		Name:         in.Name,
		FoodType:     in.FoodType,
		Location:     in.Location,
		Municipality: in.Municipality,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
