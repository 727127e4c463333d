package routes

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventboard/middlewares"
	"eventboard/models"
	"eventboard/utils"
)

// POST /api/events
func (d *deps) createEvent(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)

	var req struct {
		Title            string `json:"title" form:"title" binding:"required"`
		Poster           string `json:"poster" form:"poster" binding:"required"`
		Description      string `json:"description" form:"description" binding:"required"`
		RegistrationLink string `json:"registrationLink" form:"registrationLink" binding:"required,url"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	event := models.Event{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Poster:           req.Poster,
		Description:      req.Description,
		RegistrationLink: req.RegistrationLink,
		CreatedBy:        user.ID,
		CreatedAt:        time.Now().UTC(),
	}

	// The poster image, when sent, must land in the remote store before
	// anything is persisted: a failed upload aborts the whole request.
	if fh, err := c.FormFile("file"); err == nil {
		if d.assets == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "File uploads are not enabled"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			d.log.WithError(err).Error("create event: open upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			d.log.WithError(err).Error("create event: read upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		stored, err := d.assets.Store(c.Request.Context(), fh.Filename, data)
		if err != nil {
			d.log.WithError(err).Error("create event: asset upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		event.PosterURL = stored.URL
		event.AssetPath = stored.Path
	}

	if err := d.events.Create(&event); err != nil {
		d.log.WithError(err).Error("create event: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if d.inv != nil {
		d.inv.PurgeEventFeeds(c.Request.Context())
	}

	event.CreatorName = user.Name
	c.JSON(http.StatusCreated, gin.H{"message": "Event created!", "event": event})
}

// GET /api/events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.events.All()
	if err != nil {
		d.log.WithError(err).Error("list events: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Resolve creator display names; only the name is exposed. A creator
	// deleted since then just leaves the name blank.
	names := map[int64]string{}
	for i := range events {
		name, ok := names[events[i].CreatedBy]
		if !ok {
			if u, err := d.users.GetByID(events[i].CreatedBy); err == nil {
				name = u.Name
			}
			names[events[i].CreatedBy] = name
		}
		events[i].CreatorName = name
	}

	c.JSON(http.StatusOK, events)
}

// GET /api/admin/events
func (d *deps) adminEvents(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)

	events, err := d.events.ByCreator(user.ID)
	if err != nil {
		d.log.WithError(err).Error("admin events: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	for i := range events {
		events[i].CreatorName = user.Name
	}
	c.JSON(http.StatusOK, events)
}

// DELETE /api/events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	id := c.Param("id")

	event, err := d.events.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
			return
		}
		d.log.WithError(err).Error("delete event: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if event.CreatedBy != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	// An orphaned remote file is less harmful than a stuck record, so a
	// failed asset delete is logged and the record delete proceeds.
	if event.AssetPath != "" && d.assets != nil {
		if err := d.assets.Delete(c.Request.Context(), event.AssetPath); err != nil {
			d.log.WithError(err).WithField("path", event.AssetPath).Warn("delete event: asset delete failed")
		}
	}

	if err := d.events.Delete(id); err != nil {
		d.log.WithError(err).Error("delete event: delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if d.inv != nil {
		d.inv.PurgeEventFeeds(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}
