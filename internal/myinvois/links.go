package myinvois

import (
	"net/url"
	"strings"
)

// ValidationURL enlace público del documento en el portal de MyInvois.
// Sin longID retorna el enlace corto de consulta.
func ValidationURL(portalURL, documentID, longID string) string {
	base := strings.TrimRight(portalURL, "/") + "/" + url.PathEscape(documentID) + "/share"
	if longID == "" {
		return base
	}
	return base + "/" + url.PathEscape(longID)
}
