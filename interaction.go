package esmviz

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fredbi/esmviz/model"
)

// pointMeta is the per-point record exposed to the browser for tooltips and
// click panels. It is marshaled into a window-scoped javascript object keyed
// by the point label, so formatters stay pure functions of their parameters.
type pointMeta struct {
	Model    string             `json:"model"`
	Variable string             `json:"variable,omitempty"`
	Stats    []tooltipStatEntry `json:"stats,omitempty"`
	Asset    string             `json:"asset,omitempty"`
	NoData   bool               `json:"noData,omitempty"`
}

type tooltipStatEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func statLabel(stat model.StatName) string {
	switch stat {
	case model.StatStdDev:
		return "STD"
	case model.StatCorrelation:
		return "Correlation"
	case model.StatRMSE:
		return "RMSE"
	default:
		return string(stat)
	}
}

// metaScript publishes the point metadata under a chart-scoped global, along
// with a shared helper that swaps unreachable asset images for an inline note.
func metaScript(id string, meta map[string]pointMeta) string {
	payload, err := json.Marshal(meta)
	if err != nil {
		// map[string]pointMeta cannot fail to marshal, keep the chart usable anyway
		payload = []byte("{}")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "window.esmvizMeta_%s = %s;\n", id, payload)
	b.WriteString(`window.esmvizAssetError = window.esmvizAssetError || function (img) {
  var note = document.createElement('div');
  note.className = 'esmviz-asset-error';
  var em = document.createElement('em');
  em.appendChild(document.createTextNode('diagnostic asset unreachable: ' + img.getAttribute('src')));
  note.appendChild(em);
  var holder = img.parentNode;
  holder.parentNode.replaceChild(note, holder);
};`)

	return b.String()
}

// tooltipFormatter renders the hover panel from the published metadata.
// Grid helper series (line type) yield an empty tooltip.
func tooltipFormatter(id string) string {
	return fmt.Sprintf(`function (params) {
  if (params.seriesType === 'line') { return ''; }
  var meta = (window.esmvizMeta_%s || {})[params.name];
  if (!meta) { return ''; }
  var html = '';
  if (meta.asset) {
    html += '<div><img src="' + meta.asset + '" style="width:110px;height:auto;" onerror="esmvizAssetError(this)"/></div>';
  }
  html += '<div><strong>' + meta.model + '</strong></div>';
  if (meta.variable) { html += '<div>' + meta.variable + '</div>'; }
  if (meta.noData) { html += '<div><em>no data</em></div>'; return html; }
  (meta.stats || []).forEach(function (s) {
    html += '<div>' + s.label + ': ' + Number(s.value).toFixed(3) + '</div>';
  });
  return html;
}`, id)
}

// clickHandler opens (or reuses) a panel below the chart showing the
// clicked point's diagnostic asset, with prev/next buttons cycling through
// the chart's points. Repeated clicks on the same point are idempotent.
func clickHandler(id string) string {
	return fmt.Sprintf(`(function () {
  var chart = goecharts_%[1]s;
  if (!chart || !chart.on) { return; }
  var allMeta = window.esmvizMeta_%[1]s || {};
  var names = Object.keys(allMeta);

  function panelFor() {
    var panelID = 'esmviz-panel-%[1]s';
    var panel = document.getElementById(panelID);
    if (!panel) {
      panel = document.createElement('div');
      panel.id = panelID;
      panel.style.cssText = 'margin:8px;padding:8px;border:1px solid #ccc;max-width:640px;';
      var container = document.getElementById('%[1]s').parentNode;
      container.parentNode.insertBefore(panel, container.nextSibling);
    }
    return panel;
  }

  function show(name) {
    var meta = allMeta[name];
    if (!meta) { return; }
    var panel = panelFor();
    var caption = meta.model || name;
    if (meta.variable) { caption += ' / ' + meta.variable; }
    panel.innerHTML = '';

    if (meta.asset) {
      var holder = document.createElement('div');
      holder.innerHTML = '<a href="' + meta.asset + '" target="_blank">' +
        '<img src="' + meta.asset + '" style="max-width:100%%;height:auto;" onerror="esmvizAssetError(this)"/></a>';
      panel.appendChild(holder);
    } else {
      var note = document.createElement('div');
      note.appendChild(document.createTextNode('No diagnostic asset for ' + caption));
      panel.appendChild(note);
    }

    var footer = document.createElement('div');
    footer.appendChild(document.createTextNode(caption + ' '));
    var idx = names.indexOf(name);
    [['prev', idx - 1], ['next', idx + 1]].forEach(function (nav) {
      var btn = document.createElement('button');
      btn.appendChild(document.createTextNode(nav[0]));
      btn.style.cssText = 'margin-left:4px;';
      btn.onclick = function () {
        show(names[(nav[1] + names.length) %% names.length]);
      };
      footer.appendChild(btn);
    });
    panel.appendChild(footer);
  }

  chart.on('click', function (params) {
    if (params.seriesType === 'line') { return; }
    show(params.name);
  });
})()`, id)
}
