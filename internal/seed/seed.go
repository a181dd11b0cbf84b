// Package seed 生成本地开发用的演示数据：账号、文章、论文与内置页面。
// 重复执行是安全的，已存在的数据会被跳过。
package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoPassword 是演示账号共用的密码
const DemoPassword = "ecopress123"

// Report 汇总一次执行新建的记录数
type Report struct {
	Users    int
	Articles int
	Papers   int
	Pages    int
}

func (r Report) String() string {
	return fmt.Sprintf("users=%d articles=%d papers=%d pages=%d", r.Users, r.Articles, r.Papers, r.Pages)
}

type demoArticle struct {
	title    string
	summary  string
	content  string
	category string
	tags     string
	author   string
	daysAgo  int
	draft    bool
}

var demoUsers = []struct {
	username string
	role     string
}{
	{"admin", db.RoleAdmin},
	{"editor", db.RoleEditor},
	{"reader", db.RoleUser},
}

var demoArticles = []demoArticle{
	{
		title:    "Community Solar Gardens",
		summary:  "How neighbourhoods share one array and split the savings.",
		content:  "## Shared panels\n\nA community solar garden lets households without a suitable roof buy into a nearby array.\n\n- subscription or ownership models\n- credits on the monthly bill\n- local jobs during installation",
		category: "Energy",
		tags:     "energy, solar, community",
		author:   "editor",
		daysAgo:  1,
	},
	{
		title:    "Offshore Wind Explained",
		summary:  "Why turbines keep moving further out to sea.",
		content:  "Offshore wind is steadier than onshore wind. Floating foundations now allow farms in water deeper than 60 metres.",
		category: "Energy",
		tags:     "energy, wind",
		author:   "editor",
		daysAgo:  3,
	},
	{
		title:    "Restoring Seagrass Meadows",
		summary:  "Seagrass stores carbon up to 35 times faster than tropical forests.",
		content:  "Volunteers replant seagrass shoot by shoot. Healthy meadows shelter juvenile fish and stabilise the seabed.",
		category: "Ocean",
		tags:     "ocean, carbon, biodiversity",
		author:   "admin",
		daysAgo:  5,
	},
	{
		title:    "Composting in Small Flats",
		summary:  "Bokashi and worm bins for people without gardens.",
		content:  "Bokashi ferments kitchen scraps in a sealed bucket. After two weeks the result can be buried or added to a worm bin.",
		category: "Waste",
		tags:     "waste, compost, city",
		author:   "editor",
		daysAgo:  8,
	},
	{
		title:    "Urban Tree Canopy and Heat",
		summary:  "Street trees cool neighbourhoods by several degrees.",
		content:  "Cities with dense canopy record lower surface temperatures during heatwaves. Planting programmes now target the hottest blocks first.",
		category: "Cities",
		tags:     "city, climate, trees",
		author:   "admin",
		daysAgo:  13,
	},
	{
		title:    "Repair Cafés",
		summary:  "Fixing instead of replacing, one toaster at a time.",
		content:  "Repair cafés pair volunteers who can fix things with people who own broken things.",
		category: "Waste",
		tags:     "waste, community",
		author:   "editor",
		daysAgo:  21,
	},
	{
		title:    "Peatland Rewetting",
		summary:  "Blocking drainage ditches to keep carbon in the ground.",
		content:  "Drained peat releases carbon for decades. Rewetting stops the loss and brings back bog plants.",
		category: "Land",
		tags:     "carbon, land, biodiversity",
		author:   "admin",
		daysAgo:  34,
	},
	{
		title:    "Heat Pumps for Old Houses",
		summary:  "Draft notes on retrofitting pre-war buildings.",
		content:  "Insulation first, then size the pump for the new heat loss.",
		category: "Energy",
		tags:     "energy, homes",
		author:   "editor",
		draft:    true,
	},
}

var demoPapers = []service.PaperInput{
	{
		Title:     "Soil Carbon Flux Under Cover Crops",
		Abstract:  "A three-year field study of carbon retention in rotated cover crops.",
		Content:   "We measured soil organic carbon across 24 plots.",
		Authors:   "M. Okafor, L. Brandt",
		Published: true,
	},
	{
		Title:     "Microplastics in Estuarine Sediment",
		Abstract:  "Sampling methods and concentrations along three estuaries.",
		Content:   "Sediment cores were taken at low tide.",
		Authors:   "R. Silva",
		Published: true,
	},
	{
		Title:     "Grid Storage Sizing for Island Communities",
		Abstract:  "Battery sizing under high solar penetration.",
		Content:   "Work in progress.",
		Authors:   "T. Nakamura, A. Ferreira",
		Published: false,
	},
}

var demoPages = map[string]struct {
	title   string
	content string
}{
	db.PageSlugAbout: {
		title:   "About us",
		content: "## EcoPress\n\nWe publish practical writing on energy, land, oceans and cities.\n\nEvery article is reviewed by an editor before it goes live.",
	},
	db.PageSlugTeam: {
		title:   "Our team",
		content: "- **Editors** review and publish articles\n- **Researchers** share papers\n- **Readers** keep us honest",
	},
}

// Run 写入演示数据；now 决定文章的发布时间
func Run(gdb *gorm.DB, now time.Time, log *zap.Logger) (Report, error) {
	if gdb == nil {
		return Report{}, errors.New("seed: database not initialized")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var report Report
	users := make(map[string]uint, len(demoUsers))

	// 创建演示账号
	for _, u := range demoUsers {
		created, err := db.EnsureUser(gdb, u.username, DemoPassword, u.username+"@ecopress.local", u.role)
		if err != nil {
			return report, fmt.Errorf("seed user %s: %w", u.username, err)
		}
		if created {
			report.Users++
		}

		var user db.User
		if err := gdb.Where("username = ?", u.username).First(&user).Error; err != nil {
			return report, fmt.Errorf("load user %s: %w", u.username, err)
		}
		users[u.username] = user.ID
	}

	articles := service.NewArticleService(gdb)
	for _, item := range demoArticles {
		slug := service.Slugify(item.title)
		if _, err := articles.GetBySlug(slug, true); err == nil {
			log.Debug("article exists, skipping", zap.String("slug", slug))
			continue
		} else if !errors.Is(err, service.ErrArticleNotFound) {
			return report, err
		}

		article, err := articles.Create(users[item.author], service.ArticleInput{
			Title:     item.title,
			Slug:      slug,
			Summary:   item.summary,
			Content:   item.content,
			Category:  item.category,
			Tags:      item.tags,
			Published: !item.draft,
		})
		if err != nil {
			return report, fmt.Errorf("seed article %q: %w", item.title, err)
		}
		if !item.draft {
			publishedAt := now.AddDate(0, 0, -item.daysAgo)
			if err := gdb.Model(article).Update("publish_date", publishedAt).Error; err != nil {
				return report, fmt.Errorf("backdate article %q: %w", item.title, err)
			}
		}
		report.Articles++
	}

	papers := service.NewPaperService(gdb)
	for _, input := range demoPapers {
		slug := service.Slugify(input.Title)
		if _, err := papers.GetBySlug(slug, true); err == nil {
			continue
		} else if !errors.Is(err, service.ErrPaperNotFound) {
			return report, err
		}

		input.Slug = slug
		if _, err := papers.Create(users["editor"], input); err != nil {
			return report, fmt.Errorf("seed paper %q: %w", input.Title, err)
		}
		report.Papers++
	}

	// 只在页面不存在时写入，避免覆盖后台编辑过的内容
	pages := service.NewPageService(gdb)
	for slug, page := range demoPages {
		if _, err := pages.GetBySlug(slug); err == nil {
			continue
		} else if !errors.Is(err, service.ErrPageNotFound) {
			return report, err
		}
		if _, err := pages.SavePage(slug, page.title, page.content); err != nil {
			return report, fmt.Errorf("seed page %s: %w", slug, err)
		}
		report.Pages++
	}

	log.Info("seed finished", zap.Stringer("report", report))
	return report, nil
}
