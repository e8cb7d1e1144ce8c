package crawler

import (
	"fmt"
	"strings"

	"github.com/nao1215/benchdist/internal/model"
)

// listingPage renders a result listing in the shape of the remote markup.
// lastPage 0 renders no pagination control.
func listingPage(pairs []model.ScorePair, lastPage int) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="container"><div class="row"><div class="col-12">`)

	for i, p := range pairs {
		fmt.Fprintf(&sb, `
<div class="list-col">
  <div class="list-col-inner">
    <div class="row">
      <div class="col-12 col-lg-4"><a href="/v5/cpu/%d">System %d</a></div>
      <div class="col-6 col-md-3 col-lg-2"><span class="list-col-subtitle">Uploaded</span><span class="list-col-text">Jan 01, 2024</span></div>
      <div class="col-6 col-md-3 col-lg-2"><span class="list-col-subtitle">Platform</span><span class="list-col-text">Linux</span></div>
      <div class="col-6 col-md-3 col-lg-2"><span class="list-col-subtitle">Single-Core Score</span><span class="list-col-text-score">
        %d
      </span></div>
      <div class="col-6 col-md-3 col-lg-2"><span class="list-col-subtitle">Multi-Core Score</span><span class="list-col-text-score">
        %d
      </span></div>
    </div>
  </div>
</div>`, i, i, p.SingleCore, p.MultiCore)
	}

	if lastPage > 0 {
		sb.WriteString(`<nav><ul class="pagination">`)
		sb.WriteString(`<li class="page-item active"><a class="page-link" href="?page=1">1</a></li>`)
		if lastPage > 1 {
			sb.WriteString(`<li class="page-item disabled"><span class="page-link">&hellip;</span></li>`)
		}
		fmt.Fprintf(&sb, `<li class="page-item"><a class="page-link" href="?page=%d">%d</a></li>`, lastPage, lastPage)
		sb.WriteString(`<li class="page-item"><a class="page-link" href="?page=2" rel="next">Next &rsaquo;</a></li>`)
		sb.WriteString(`</ul></nav>`)
	}

	sb.WriteString(`</div></div></div></body></html>`)
	return sb.String()
}
