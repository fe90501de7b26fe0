package usecase

import (
	"fmt"
	"strings"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// Prompts are in Slovak: the reports land on the desks of Slovak claim
// handlers and the analysed documents are Slovak to begin with.

const reportJSONContract = `Odpovedz VÝLUČNE platným JSON objektom s presne týmito kľúčmi:
{
  "summary": "zhrnutie dokumentácie (max 200 slov)",
  "relevance_analysis": "analýza relevantnosti voči poistným podmienkam (max 300 slov)",
  "exclusions_analysis": "analýza možných výluk z poistného krytia (max 300 slov)",
  "recommendation": "odporúčanie: schváliť / zamietnuť / došetriť",
  "justification": "odôvodnenie odporúčania (max 200 slov)"
}
Nepridávaj žiadny text mimo JSON objektu.`

const documentReportSystemPrompt = `Si skúsený likvidátor poistných udalostí. Tvojou úlohou je analyzovať
anonymizovaný dokument k poistnej udalosti a pripraviť odborné posúdenie
pre likvidáciu. Pracuj iba s informáciami uvedenými v dokumente a v
priložených poistných podmienkach; nič si nedomýšľaj.

` + reportJSONContract

const claimReportSystemPrompt = `Si skúsený likvidátor poistných udalostí. Tvojou úlohou je vypracovať
záverečnú súhrnnú analýzu poistnej udalosti na základe všetkých schválených
dokumentov spisu. Posúď nárok ako celok voči priloženým poistným podmienkam;
pri rozpore medzi dokumentmi rozpor výslovne pomenuj. Nič si nedomýšľaj.

` + reportJSONContract

// buildDocumentReportPrompt assembles the user prompt for a single-document
// analysis.
func buildDocumentReportPrompt(claim *domain.Claim, doc *domain.Document, text string, contexts []domain.InsuranceContext) string {
	var b strings.Builder
	writeClaimHeader(&b, claim)
	fmt.Fprintf(&b, "\n=== DOKUMENT: %s ===\n%s\n", doc.FileName, text)
	writeContexts(&b, contexts)
	return b.String()
}

// buildClaimReportPrompt assembles the user prompt for the final claim-level
// analysis over every approved document.
func buildClaimReportPrompt(claim *domain.Claim, docs []domain.Document, texts []string, contexts []domain.InsuranceContext, customInstruction string) string {
	var b strings.Builder
	writeClaimHeader(&b, claim)
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n=== DOKUMENT: %s ===\n%s\n", doc.FileName, texts[i])
	}
	writeContexts(&b, contexts)
	if s := strings.TrimSpace(customInstruction); s != "" {
		fmt.Fprintf(&b, "\nDOPLŇUJÚCA INŠTRUKCIA LIKVIDÁTORA:\n%s\n", s)
	}
	return b.String()
}

func writeClaimHeader(b *strings.Builder, claim *domain.Claim) {
	fmt.Fprintf(b, "POISTNÁ UDALOSŤ č. %s\n", claim.ClaimNumber)
	fmt.Fprintf(b, "Klient: %s\n", claim.ClientName)
	fmt.Fprintf(b, "Typ poistenia: %s\n", claim.ClaimType)
	if claim.PolicyNumber != "" {
		fmt.Fprintf(b, "Číslo poistnej zmluvy: %s\n", claim.PolicyNumber)
	}
}

func writeContexts(b *strings.Builder, contexts []domain.InsuranceContext) {
	if len(contexts) == 0 {
		return
	}
	b.WriteString("\n=== POISTNÉ PODMIENKY A INTERNÉ SMERNICE ===\n")
	for _, c := range contexts {
		fmt.Fprintf(b, "\n[%s] %s\n%s\n", c.ContextType, c.Title, c.Content)
	}
}
