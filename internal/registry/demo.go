package registry

import (
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// demoRecords builds the synthetic record set for one population pass,
// selected by source type. Callers must hold r.mu because the random
// source is not goroutine safe.
func (r *Registry) demoRecords(sourceType model.SourceType) []model.Record {
	stamp := model.String(r.now().Format(time.RFC3339))

	switch sourceType {
	case model.SourceTypeOSINT:
		return []model.Record{
			{
				"source":    model.String("social-media"),
				"author":    model.String("@darkwire_watch"),
				"content":   model.String("Suspicious credential dump advertised on paste sites"),
				"timestamp": stamp,
			},
			{
				"source":    model.String("news-feed"),
				"headline":  model.String("Retailer discloses data breach affecting loyalty accounts"),
				"content":   model.String("Initial reports point to a compromised vendor portal"),
				"timestamp": stamp,
			},
			{
				"source":    model.String("forum-monitor"),
				"thread":    model.String("0day-trade"),
				"content":   model.String("Chatter references an unpatched vulnerability in edge routers"),
				"timestamp": stamp,
			},
		}
	case model.SourceTypeNetwork:
		return []model.Record{
			{
				"source":        model.String("firewall"),
				"sourceIP":      model.String("192.168.1.100"),
				"destinationIP": model.String("203.0.113.54"),
				"port":          model.Number(4444),
				"protocol":      model.String("tcp"),
				"status":        model.String("blocked"),
				"timestamp":     stamp,
			},
			{
				"source":        model.String("ids"),
				"sourceIP":      model.String("10.0.0.50"),
				"destinationIP": model.String("198.51.100.17"),
				"port":          model.Number(8081),
				"protocol":      model.String("tcp"),
				"status":        model.String("allowed"),
				"timestamp":     stamp,
			},
			{
				"source":        model.String("netflow"),
				"sourceIP":      model.String("203.0.113.7"),
				"destinationIP": model.String("198.51.100.89"),
				"port":          model.Number(443),
				"protocol":      model.String("tcp"),
				"status":        model.String("allowed"),
				"timestamp":     stamp,
			},
		}
	case model.SourceTypeThreat:
		return []model.Record{
			{
				"source":    model.String("threat-feed"),
				"type":      model.String("malware"),
				"indicator": model.String("filedrop.badcdn.example"),
				"family":    model.String("loader"),
				"severity":  model.String("high"),
				"timestamp": stamp,
			},
			{
				"source":    model.String("threat-feed"),
				"type":      model.String("phishing"),
				"indicator": model.String("login.account-verify.example"),
				"severity":  model.String("medium"),
				"timestamp": stamp,
			},
			{
				"source":    model.String("threat-feed"),
				"type":      model.String("malware"),
				"indicator": model.String("198.51.100.23"),
				"family":    model.String("stealer"),
				"severity":  model.String("medium"),
				"timestamp": stamp,
			},
		}
	default:
		return []model.Record{
			{
				"source":    model.String("custom-feed"),
				"value":     model.Number(r.rng.Float64() * 100),
				"timestamp": stamp,
			},
		}
	}
}
