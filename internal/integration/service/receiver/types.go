package receiver

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
)

// ParseAlertEvent decodes the form-encoded StatusCake webhook body.
func ParseAlertEvent(c *gin.Context) *model.AlertEvent {
	ev := &model.AlertEvent{
		TestID:     c.PostForm("TestID"),
		Name:       c.PostForm("Name"),
		Method:     c.PostForm("Method"),
		Status:     c.PostForm("Status"),
		StatusCode: c.PostForm("StatusCode"),
		URL:        c.PostForm("URL"),
		IP:         c.PostForm("IP"),
	}
	if tags := c.PostForm("Tags"); tags != "" {
		ev.Tags = strings.Split(tags, ",")
	}
	return ev
}

// ResponseSummary is the human-readable acknowledgement body. Without a test
// name there is nothing to echo and a generic success line is returned.
func ResponseSummary(ev *model.AlertEvent) string {
	if ev.Name == "" {
		return "This HTTP triggered function executed successfully."
	}
	return "Test: '" + ev.Name + "' was triggered. Status: " + ev.Status + "(" + ev.StatusCode + ")" +
		" \n URL: " + ev.URL + " IP: " + ev.IP + "\n Tags: " + strings.Join(ev.Tags, ",") +
		" \n Method: " + ev.Method + " TestID: " + ev.TestID
}
