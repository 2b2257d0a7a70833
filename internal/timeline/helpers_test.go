package timeline

import "github.com/meltforce/shotcaller/internal/models"

func shot(id, pos string) models.Entry {
	return models.Entry{Kind: models.EntryShot, ID: id, Name: id, Position: models.ParsePosition(pos)}
}

func shotWith(id string, cfg *models.Config) models.Entry {
	e := shot(id, "normal")
	e.Config = cfg
	return e
}

func message(id, text string, cfg *models.Config) models.Entry {
	if cfg == nil {
		cfg = &models.Config{}
	}
	cfg.Message = models.Ptr(text)
	return models.Entry{Kind: models.EntryMessage, ID: id, Name: id, Config: cfg}
}

func pattern(id string, cfg *models.Config, entries ...models.Entry) models.Pattern {
	return models.Pattern{ID: id, Name: id, Config: cfg, Entries: entries}
}

func ids(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func seedPtr(s int64) *int64 { return &s }
