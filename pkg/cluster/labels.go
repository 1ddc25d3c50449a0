package cluster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Labeling limits.
const (
	labelTimeout    = 10 * time.Second
	labelSampleSize = 3 // members shown to the labeler per cluster
	labelFanout     = 4 // concurrent labeling calls
)

// labelClusters fills Label and Description on every cluster. With a
// configured Labeler the calls run concurrently with a bounded fan-out and
// a per-call timeout; a failed or unparsable reply degrades that cluster to
// the keyword fallback. Without a Labeler every cluster gets the fallback.
func (e *Engine) labelClusters(ctx context.Context, clusters []Cluster) {
	for i := range clusters {
		clusters[i].Label, clusters[i].Description = fallbackLabel(clusters[i])
	}
	if e.labeler == nil {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(labelFanout)
	for i := range clusters {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, labelTimeout)
			defer cancel()

			reply, err := e.labeler.Generate(callCtx, labelPrompt(clusters[i]))
			if err != nil {
				e.logger.Debug("cluster labeling failed, keeping fallback",
					"cluster", clusters[i].ID, "err", err)
				return nil
			}
			if label, desc, ok := parseLabelReply(reply); ok {
				clusters[i].Label, clusters[i].Description = label, desc
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures keep the fallback
}

// labelPrompt builds the labeling request from up to three sample members.
func labelPrompt(c Cluster) string {
	var b strings.Builder
	b.WriteString("These code entities belong to one semantic cluster:\n")
	for i, m := range c.Members {
		if i == labelSampleSize {
			break
		}
		fmt.Fprintf(&b, "- %s (%s) in %s\n", m.ID, m.Type, m.Path)
	}
	fmt.Fprintf(&b, "Top terms: %s.\n", strings.Join(c.Keywords, ", "))
	b.WriteString("Reply exactly as: LABEL: <short label> DESCRIPTION: <one sentence>")
	return b.String()
}

// parseLabelReply extracts the label and description from a
// "LABEL: <text> DESCRIPTION: <text>" reply.
func parseLabelReply(reply string) (label, desc string, ok bool) {
	const (
		labelTag = "LABEL:"
		descTag  = "DESCRIPTION:"
	)
	li := strings.Index(reply, labelTag)
	di := strings.Index(reply, descTag)
	if li < 0 || di < li {
		return "", "", false
	}
	label = strings.TrimSpace(reply[li+len(labelTag) : di])
	desc = strings.TrimSpace(reply[di+len(descTag):])
	if label == "" {
		return "", "", false
	}
	return label, desc, true
}

// fallbackLabel synthesizes a label from the top keywords and a description
// stating member count and dominant type.
func fallbackLabel(c Cluster) (label, desc string) {
	terms := c.Keywords
	if len(terms) > 3 {
		terms = terms[:3]
	}
	if len(terms) == 0 {
		label = "cluster " + c.ID
	} else {
		label = strings.Join(terms, " / ")
	}
	desc = fmt.Sprintf("%d entities, mostly %s", len(c.Members), c.DominantType)
	return label, desc
}
