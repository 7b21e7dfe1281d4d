package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

const (
	descriptionPreview = 120
	eventTimeLayout    = "2006-01-02T15:04"
)

type homePageData struct {
	basePageData
	Balance     int64
	HasBalance  bool
	UserCount   int
	EventCount  int
	NextEvent   *model.Event
	BalanceNote string
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	store := storeFromRequest(r)
	data := homePageData{basePageData: s.buildBasePageData(r, "Home")}

	res := s.clientFor(r).RefreshBankBalance(r.Context())
	if res.Err != nil {
		data.BalanceNote = "Balance could not be refreshed."
	}
	data.Balance, data.HasBalance = store.Bank.Get()
	data.UserCount = len(store.Users.Value())
	events := store.Events.Value()
	data.EventCount = len(events)
	now := time.Now()
	for i := range events {
		if events[i].Start.After(now) {
			next := events[i]
			data.NextEvent = &next
			break
		}
	}
	s.render(w, "home", http.StatusOK, data)
}

type rankGroup struct {
	Rank  model.Rank
	Name  string
	Users []model.User
}

type ranksPageData struct {
	basePageData
	Groups    []rankGroup
	Ranks     []model.Rank
	Draw      string
	LoadError string
}

func (s *server) handleRanks(w http.ResponseWriter, r *http.Request) {
	data := s.ranksPage(r)
	s.render(w, "ranks", http.StatusOK, data)
}

func (s *server) ranksPage(r *http.Request) ranksPageData {
	data := ranksPageData{
		basePageData: s.buildBasePageData(r, "Ranks"),
		Ranks:        model.Ranks,
	}
	res := s.clientFor(r).RefreshUsers(r.Context())
	if res.Err != nil {
		data.LoadError = "The member list could not be loaded."
	}
	users := storeFromRequest(r).Users.Value()
	for _, rank := range model.Ranks {
		data.Groups = append(data.Groups, rankGroup{
			Rank:  rank,
			Name:  model.RankName(rank),
			Users: model.FilterForRank(rank, users),
		})
	}
	return data
}

type rankForm struct {
	ID   string `validate:"required"`
	Rank int    `validate:"required,gte=1,lte=9"`
}

func (s *server) handleUpdateRank(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/ranks", "", "Invalid rank form.")
		return
	}
	rank, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("rank")))
	form := rankForm{ID: strings.TrimSpace(chi.URLParam(r, "id")), Rank: rank}
	if err := s.validate.Struct(form); err != nil {
		redirectWith(w, r, "/ranks", "", "Choose a valid rank.")
		return
	}

	client := s.clientFor(r)
	user, ok := findUser(storeFromRequest(r).Users.Value(), form.ID)
	if !ok {
		res := client.GetUser(r.Context(), form.ID)
		if !res.HasValue() {
			redirectWith(w, r, "/ranks", "", "That member could not be found.")
			return
		}
		user = res.Value
	}
	previous := user.Rank
	user.Rank = model.Rank(form.Rank)
	if res := client.UpdateUser(r.Context(), user); res.Err != nil {
		redirectWith(w, r, "/ranks", "", "The rank change was not saved.")
		return
	}
	s.logger.Info(logCategory, "rank updated", map[string]any{
		"user_id": user.ID,
		"from":    previous.String(),
		"to":      user.Rank.String(),
	})
	redirectWith(w, r, "/ranks", user.Name+" is now "+model.RankName(user.Rank)+".", "")
}

type drawForm struct {
	Max       int `validate:"required,gte=1,lte=50"`
	RankLimit int `validate:"required,gte=1,lte=9"`
}

// handleDraw picks random members at or below a rank. Input is validated
// first; the backend call is only made with a positive count and rank.
func (s *server) handleDraw(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/ranks", "", "Invalid draw form.")
		return
	}
	max, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("max")))
	rankLimit, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("rank_limit")))
	form := drawForm{Max: max, RankLimit: rankLimit}
	if err := s.validate.Struct(form); err != nil {
		redirectWith(w, r, "/ranks", "", "Pick between 1 and 50 members and a rank.")
		return
	}
	names, err := s.clientFor(r).GetRandomNames(r.Context(), form.Max, form.RankLimit).Get()
	if err != nil {
		s.logger.Warn(logCategory, "draw failed", map[string]any{"error": err.Error()})
		redirectWith(w, r, "/ranks", "", "The draw failed.")
		return
	}
	data := s.ranksPage(r)
	data.Draw = names
	s.render(w, "ranks", http.StatusOK, data)
}

func findUser(users []model.User, id string) (model.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

type eventRow struct {
	ID          string
	Name        string
	Schedule    string
	Status      string
	StatusClass string
	Description string
	Positions   string
}

type eventsPageData struct {
	basePageData
	Events    []eventRow
	LoadError string
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	data := eventsPageData{basePageData: s.buildBasePageData(r, "Events")}
	res := s.clientFor(r).RefreshEvents(r.Context())
	if res.Err != nil {
		data.LoadError = "Events could not be loaded."
	}
	for _, ev := range storeFromRequest(r).Events.Value() {
		data.Events = append(data.Events, eventRow{
			ID:          ev.ID,
			Name:        ev.Name,
			Schedule:    ev.Schedule(s.location),
			Status:      statusLabel(ev.Status),
			StatusClass: statusClass(ev.Status),
			Description: model.TruncateString(ev.Description, descriptionPreview),
			Positions:   positionSummary(ev.Positions),
		})
	}
	s.render(w, "events", http.StatusOK, data)
}

type eventForm struct {
	Name        string `validate:"required,max=120"`
	Start       string `validate:"required"`
	End         string `validate:"required"`
	Description string `validate:"max=4000"`
	Cover       string `validate:"omitempty,url"`
	Repeat      int    `validate:"gte=0,lte=3"`
	Positions   string
}

func (s *server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/events", "", "Invalid event form.")
		return
	}
	repeat, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("repeat")))
	form := eventForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Start:       strings.TrimSpace(r.FormValue("start")),
		End:         strings.TrimSpace(r.FormValue("end")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Cover:       strings.TrimSpace(r.FormValue("cover")),
		Repeat:      repeat,
		Positions:   r.FormValue("positions"),
	}
	if err := s.validate.Struct(form); err != nil {
		redirectWith(w, r, "/events", "", "Name, start and end are required.")
		return
	}
	start, errStart := time.ParseInLocation(eventTimeLayout, form.Start, s.location)
	end, errEnd := time.ParseInLocation(eventTimeLayout, form.End, s.location)
	if errStart != nil || errEnd != nil || !end.After(start) {
		redirectWith(w, r, "/events", "", "The event must end after it starts.")
		return
	}
	positions, ok := parsePositions(form.Positions)
	if !ok {
		redirectWith(w, r, "/events", "", "Positions look like pilot=2, gunner=4.")
		return
	}

	event := model.Event{
		Name:        form.Name,
		Start:       start,
		End:         end,
		Repeat:      model.Repeat(form.Repeat),
		AutoStart:   r.FormValue("auto_start") != "",
		Status:      model.EventCreated,
		Description: form.Description,
		Cover:       form.Cover,
		Positions:   positions,
	}
	created, err := s.clientFor(r).CreateEvent(r.Context(), event).Get()
	if err != nil {
		s.logger.Warn(logCategory, "create event failed", map[string]any{"error": err.Error()})
		redirectWith(w, r, "/events", "", "The event was not created.")
		return
	}
	s.logger.Info(logCategory, "event created", map[string]any{"event_id": created.ID})
	redirectWith(w, r, "/events", "Event created.", "")
}

func (s *server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		redirectWith(w, r, "/events", "", "Missing event id.")
		return
	}
	// failures are logged by the client; the event is already gone locally
	s.clientFor(r).DeleteEvent(r.Context(), id)
	redirectWith(w, r, "/events", "Event deleted.", "")
}

type errorPageData struct {
	basePageData
	Message string
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request) {
	data := errorPageData{basePageData: s.buildBasePageData(r, "Last error")}
	if err, ok := storeFromRequest(r).Err.Get(); ok && err != nil {
		data.Message = err.Error()
	}
	s.render(w, "error", http.StatusOK, data)
}
