// Package prompts builds the model prompts for each pipeline stage from an embedded template
// catalog. Placeholders are literal {NAME} tokens; substitution is a single pass with no
// escaping, so user content containing a placeholder token is left as is.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var catalogYAML []byte

// Catalog holds the five stage templates.
type Catalog struct {
	ICPAnalysisTemplate string `yaml:"icp_analysis"`
	GTMStrategyTemplate string `yaml:"gtm_strategy"`
	MessagingTemplate   string `yaml:"messaging"`
	ChecklistTemplate   string `yaml:"checklist"`
	ICPCardTemplate     string `yaml:"icp_card"`
}

var defaultCatalog = mustLoad(catalogYAML)

func mustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses a template catalog and checks every template is present.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}
	for name, tpl := range map[string]string{
		"icp_analysis": c.ICPAnalysisTemplate,
		"gtm_strategy": c.GTMStrategyTemplate,
		"messaging":    c.MessagingTemplate,
		"checklist":    c.ChecklistTemplate,
		"icp_card":     c.ICPCardTemplate,
	} {
		if strings.TrimSpace(tpl) == "" {
			return nil, fmt.Errorf("prompt catalog is missing template %q", name)
		}
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Fill replaces each {NAME} placeholder with values[NAME]. Unknown placeholders stay in place.
func Fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// ICPAnalysis builds the ICP analysis prompt. scraped is the extractor's JSON string.
func (c *Catalog) ICPAnalysis(websiteURL, scraped, productDescription, targetRegion string) string {
	return Fill(c.ICPAnalysisTemplate, map[string]string{
		"WEBSITE_URL":         websiteURL,
		"SCRAPED_CONTENT":     scraped,
		"PRODUCT_DESCRIPTION": productDescription,
		"TARGET_REGION":       targetRegion,
	})
}

func (c *Catalog) GTMStrategy(productName string, icp any) (string, error) {
	icpJSON, err := toJSON(icp)
	if err != nil {
		return "", err
	}
	return Fill(c.GTMStrategyTemplate, map[string]string{
		"PRODUCT_NAME": productName,
		"ICP_JSON":     icpJSON,
	}), nil
}

func (c *Catalog) Messaging(productName string, icp, gtm any) (string, error) {
	icpJSON, err := toJSON(icp)
	if err != nil {
		return "", err
	}
	gtmJSON, err := toJSON(gtm)
	if err != nil {
		return "", err
	}
	return Fill(c.MessagingTemplate, map[string]string{
		"PRODUCT_NAME": productName,
		"ICP_JSON":     icpJSON,
		"GTM_JSON":     gtmJSON,
	}), nil
}

func (c *Catalog) Checklist(productName string, gtm, messaging any) (string, error) {
	gtmJSON, err := toJSON(gtm)
	if err != nil {
		return "", err
	}
	msgJSON, err := toJSON(messaging)
	if err != nil {
		return "", err
	}
	return Fill(c.ChecklistTemplate, map[string]string{
		"PRODUCT_NAME":   productName,
		"GTM_JSON":       gtmJSON,
		"MESSAGING_JSON": msgJSON,
	}), nil
}

func (c *Catalog) ICPCard(productName, websiteURL string, icp any) (string, error) {
	icpJSON, err := toJSON(icp)
	if err != nil {
		return "", err
	}
	return Fill(c.ICPCardTemplate, map[string]string{
		"PRODUCT_NAME": productName,
		"WEBSITE_URL":  websiteURL,
		"ICP_JSON":     icpJSON,
	}), nil
}

// ProductName picks a display name for prompts: the scraped page title when present,
// otherwise the URL host without a leading "www.".
func ProductName(scraped, rawURL string) string {
	var page struct {
		Title string `json:"title"`
	}
	if scraped != "" && json.Unmarshal([]byte(scraped), &page) == nil {
		if t := strings.TrimSpace(page.Title); t != "" {
			return t
		}
	}
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return rawURL
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize prompt input: %w", err)
	}
	return string(b), nil
}
