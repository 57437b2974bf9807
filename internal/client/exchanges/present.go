package exchanges

import (
	"strconv"

	"github.com/virapagina/virapagina/internal/client/models"
)

// Tone is the colour category of a status.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneInfo
	ToneSuccess
	ToneError
)

func (t Tone) String() string {
	switch t {
	case ToneInfo:
		return "info"
	case ToneSuccess:
		return "success"
	case ToneError:
		return "error"
	}
	return "neutral"
}

// Presentation is how a status is rendered.
type Presentation struct {
	Label string
	Tone  Tone
	Known bool
}

var presentations = map[models.ExchangeStatus]Presentation{
	models.StatusRequested:       {Label: "Requisitada", Tone: ToneNeutral, Known: true},
	models.StatusWaitingApproval: {Label: "Aguardando Aprovação", Tone: ToneInfo, Known: true},
	models.StatusAccepted:        {Label: "Aceita", Tone: ToneSuccess, Known: true},
	models.StatusRefused:         {Label: "Recusada", Tone: ToneError, Known: true},
	models.StatusCompleted:       {Label: "Concluída", Tone: ToneSuccess, Known: true},
	models.StatusCanceled:        {Label: "Cancelada", Tone: ToneError, Known: true},
}

// Present maps a status to its label. Statuses it does not know are shown
// verbatim.
func Present(s models.ExchangeStatus) Presentation {
	if p, ok := presentations[s]; ok {
		return p
	}
	return Presentation{Label: string(s), Tone: ToneNeutral}
}

// Row is the flattened, display-ready form of an exchange.
type Row struct {
	ID            int64
	Status        models.ExchangeStatus
	RequestedBook string
	OfferedBook   string
	RequesterName string
	ProviderName  string
	RequestDate   string
}

// Project flattens ex for display. Participants without a name in the
// record are shown by id.
func Project(ex models.Exchange) Row {
	return Row{
		ID:            ex.ID,
		Status:        ex.Status,
		RequestedBook: ex.ProviderBook.Title,
		OfferedBook:   ex.RequesterBook.Title,
		RequesterName: participant(ex.RequesterBook.Owner, ex.RequesterID),
		ProviderName:  participant(ex.ProviderBook.Owner, ex.ProviderID),
		RequestDate:   ex.RequestDate.Date(),
	}
}

func participant(owner *models.UserRef, id int64) string {
	if owner != nil && owner.Name != "" {
		return owner.Name
	}
	if id == 0 {
		return ""
	}
	return "#" + strconv.FormatInt(id, 10)
}
