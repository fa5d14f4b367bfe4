package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/history"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/observability"
	"marketplace-portal/internal/search"
)

// ListingDeps bundles the collaborators shared by the property and
// vehicle handlers.
type ListingDeps struct {
	Listings      database.ListingStore
	Favorites     database.FavoriteStore
	Notifications database.NotificationStore
	History       *history.Service
	Search        *search.SearchClient
}

type statusRequest struct {
	Status models.ListingStatus `json:"status" binding:"required"`
}

// transitionListing applies a validated status change to a listing on
// behalf of actorID. Only the owner (or an admin) may transition; the change
// is checked against the transition table before the compare-and-swap write.
func transitionListing(c *gin.Context, deps ListingDeps, l models.Listing, actorID uint, isAdmin bool, to models.ListingStatus) {
	if !to.IsValid() {
		respondBadRequest(c, "unknown status: "+string(to))
		return
	}
	if l.Owner() != actorID && !isAdmin {
		respondError(c, models.ErrForbidden)
		return
	}

	from := l.CurrentStatus()
	if err := models.CheckTransition(from, to); err != nil {
		observability.IncStatusTransition(string(l.Kind()), string(to), "rejected")
		respondError(c, err)
		return
	}

	if err := deps.Listings.TransitionStatus(c.Request.Context(), l, to); err != nil {
		observability.IncStatusTransition(string(l.Kind()), string(to), "conflict")
		respondError(c, err)
		return
	}
	observability.IncStatusTransition(string(l.Kind()), string(to), "applied")

	if err := deps.History.RecordStatusChange(l, actorID, from, to); err != nil {
		log.Printf("[API] history record failed kind=%s id=%d: %v", l.Kind(), l.ListingID(), err)
	}

	syncSearchAfterTransition(deps, l, from, to)
	notifyFavoriters(c.Request.Context(), deps, l, from, to)

	respondMessage(c, 200, gin.H{
		"kind":   l.Kind(),
		"id":     l.ListingID(),
		"status": to,
	}, "Status updated")
}

// syncSearchAfterTransition keeps the search index consistent with the
// listing's visibility: only ACTIVE listings are indexed.
func syncSearchAfterTransition(deps ListingDeps, l models.Listing, from, to models.ListingStatus) {
	if deps.Search == nil {
		return
	}
	switch {
	case to == models.StatusActive:
		doc := search.BuildDocument(l)
		doc.Status = string(to)
		if err := deps.Search.IndexDocument(doc); err != nil {
			log.Printf("[Search API] index failed kind=%s id=%d: %v", l.Kind(), l.ListingID(), err)
		}
	case from == models.StatusActive:
		if err := deps.Search.DeleteListing(l.Kind(), l.ListingID()); err != nil {
			log.Printf("[Search API] delete failed kind=%s id=%d: %v", l.Kind(), l.ListingID(), err)
		}
	}
}

// notifyFavoriters enqueues a status-change notification for everyone who
// saved the listing, honoring per-user preferences. Best effort only.
func notifyFavoriters(ctx context.Context, deps ListingDeps, l models.Listing, from, to models.ListingStatus) {
	userIDs, err := deps.Favorites.UsersForListing(ctx, models.RefTo(l))
	if err != nil {
		log.Printf("[API] favoriter lookup failed kind=%s id=%d: %v", l.Kind(), l.ListingID(), err)
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"kind":       l.Kind(),
		"listing_id": l.ListingID(),
		"old_status": from,
		"new_status": to,
	})

	for _, userID := range userIDs {
		if userID == l.Owner() {
			continue
		}
		pref, err := deps.Notifications.PreferenceFor(ctx, userID)
		if err != nil || !pref.OnFavoriteShift {
			continue
		}
		item := &models.NotificationQueue{
			RecipientID: userID,
			Type:        models.NotifyTypeFavoriteShift,
			Payload:     string(payload),
		}
		if err := deps.Notifications.Enqueue(ctx, item); err != nil {
			log.Printf("[API] favorite notification enqueue failed user=%d: %v", userID, err)
		}
	}
}

// removeListing soft-removes a listing and cleans up its search document.
func removeListing(c *gin.Context, deps ListingDeps, l models.Listing, actorID uint, isAdmin bool) {
	if l.Owner() != actorID && !isAdmin {
		respondError(c, models.ErrForbidden)
		return
	}

	if err := deps.Listings.SoftRemove(c.Request.Context(), l); err != nil {
		respondError(c, err)
		return
	}

	note := "removed by owner"
	if isAdmin && l.Owner() != actorID {
		note = "removed by moderator"
	}
	if err := deps.History.RecordRemoval(l, actorID, note); err != nil {
		log.Printf("[API] history record failed kind=%s id=%d: %v", l.Kind(), l.ListingID(), err)
	}

	if deps.Search != nil {
		if err := deps.Search.DeleteListing(l.Kind(), l.ListingID()); err != nil {
			log.Printf("[Search API] delete failed kind=%s id=%d: %v", l.Kind(), l.ListingID(), err)
		}
	}

	respondMessage(c, 200, gin.H{
		"kind": l.Kind(),
		"id":   l.ListingID(),
	}, "Listing removed")
}
