package dialogue

import (
	"fmt"
	"strings"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/nlu"
	"github.com/krea02/ai-agent-demo/internal/pricing"
)

var slotQuestions = map[domain.Slot]string{
	domain.SlotVehicleAge: "Koliko let je star vaš avto?",
	domain.SlotHorsepower: "Koliko konjskih moči (KM) ima vaš avto?",
	domain.SlotCoverage:   "Kakšno kritje želite: osnovno zavarovanje, delni kasko ali polni kasko?",
}

const (
	repromptPrefix = "Tega nisem razumel. "
	closingReply   = "V redu. Če boste potrebovali še kaj, sem vam na voljo."
	anythingElse   = "Vam lahko pomagam še s čim?"
	clarifyReply   = "Nisem prepričan, kaj želite. Lahko vam izračunam novo premijo ali odgovorim na vprašanje o zavarovanju."
)

var coverageLabels = map[domain.Coverage]string{
	domain.CoverageBasic:   "osnovno zavarovanje",
	domain.CoveragePartial: "delni kasko",
	domain.CoverageFull:    "polni kasko",
}

// CoverageLabel returns the customer-facing name of a tier.
func CoverageLabel(c domain.Coverage) string {
	if l, ok := coverageLabels[c]; ok {
		return l
	}
	return string(c)
}

func slotQuestion(slot domain.Slot, reprompt bool) string {
	q := slotQuestions[slot]
	if reprompt {
		return repromptPrefix + q
	}
	return q
}

func cityLabel(city string) string {
	if city == "" || city == nlu.CityOther {
		return "drugo območje"
	}
	return city
}

func quoteReply(v domain.Vehicle, q pricing.Quote, offer []domain.Coverage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Informativna letna premija za %s znaša %d € (približno %d € na mesec). ",
		CoverageLabel(q.Coverage), q.Annual, q.Monthly)
	fmt.Fprintf(&b, "Izračun velja za %d let star avto z %d KM, %s. ", v.Age, v.Horsepower, cityLabel(v.City))
	if len(offer) > 0 {
		b.WriteString(offerQuestion(offer))
	} else {
		b.WriteString(anythingElse)
	}
	return b.String()
}

func optionList(offer []domain.Coverage, conj string) string {
	labels := make([]string, len(offer))
	for i, c := range offer {
		labels[i] = CoverageLabel(c)
	}
	return strings.Join(labels, " "+conj+" ")
}

func offerQuestion(offer []domain.Coverage) string {
	return fmt.Sprintf("Želite izračun še za %s?", optionList(offer, "in"))
}

func whichFirstReply(offer []domain.Coverage) string {
	return fmt.Sprintf("Z veseljem. Za katerega najprej: %s?", optionList(offer, "ali"))
}

func whichReply(offer []domain.Coverage) string {
	return fmt.Sprintf("Za kateri paket želite izračun: %s?", optionList(offer, "ali"))
}

func reaskReply(offer []domain.Coverage) string {
	if len(offer) == 1 {
		return fmt.Sprintf("Želite izračun še za %s? Odgovorite z da ali ne.", CoverageLabel(offer[0]))
	}
	return fmt.Sprintf("Želite izračun še za %s? Odgovorite z da ali ne ali izberite paket.", optionList(offer, "ali"))
}
