package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	// 新浪行情接口，仅取证券名称字段
	sinaQuoteURL = "http://hq.sinajs.cn/list=%s"
)

// NameFetcher 证券名称查询器
type NameFetcher struct {
	client *http.Client
}

// NewNameFetcher 创建证券名称查询器
func NewNameFetcher() *NameFetcher {
	return &NameFetcher{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch 批量查询证券名称，返回 代码→名称 映射。
// 查询失败的代码不在结果中，调用方按缺失处理。
func (f *NameFetcher) Fetch(codes []string) (map[string]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	url := fmt.Sprintf(sinaQuoteURL, strings.Join(codes, ","))

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Referer", "http://finance.sina.com.cn/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	// 新浪返回GBK编码
	reader := transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	return parseNames(string(body)), nil
}

// parseNames 从行情响应中提取名称
// 格式: var hq_str_sh600000="浦发银行,11.85,...";
func parseNames(data string) map[string]string {
	names := map[string]string{}

	re := regexp.MustCompile(`var hq_str_(\w+)="([^"]*)"`)
	for _, match := range re.FindAllStringSubmatch(data, -1) {
		if len(match) < 3 || match[2] == "" {
			continue
		}
		fields := strings.Split(match[2], ",")
		name := strings.TrimSpace(fields[0])
		if name != "" {
			names[match[1]] = name
		}
	}
	return names
}
