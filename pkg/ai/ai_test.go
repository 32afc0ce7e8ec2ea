package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "cmms-system/pkg/errors"
)

type suggestion struct {
	Name  string `json:"name"`
	Value int    `json:"frequency_value"`
}

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []suggestion
	}{
		{
			name: "strict",
			text: `[{"name":"Смазка","frequency_value":30}]`,
			want: []suggestion{{Name: "Смазка", Value: 30}},
		},
		{
			name: "fenced",
			text: "Вот план:\n```json\n[{\"name\":\"Осмотр\",\"frequency_value\":7}]\n```\nУдачи.",
			want: []suggestion{{Name: "Осмотр", Value: 7}},
		},
		{
			name: "fence without language",
			text: "```\n[{\"name\":\"A\",\"frequency_value\":1}]\n```",
			want: []suggestion{{Name: "A", Value: 1}},
		},
		{
			name: "loose",
			text: `Рекомендации: [{"name":"Замена фильтра","frequency_value":3}] - конец.`,
			want: []suggestion{{Name: "Замена фильтра", Value: 3}},
		},
		{
			name: "bracketed remark after array",
			text: `[{"name":"Проверка ограждений","frequency_value":1}] см. [NR-12]`,
			want: []suggestion{{Name: "Проверка ограждений", Value: 1}},
		},
		{
			name: "brackets inside strings",
			text: `Итог: [{"name":"Замер [мм]","frequency_value":2}] (п. [3])`,
			want: []suggestion{{Name: "Замер [мм]", Value: 2}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := ExtractJSONArray(tc.text)
			require.NoError(t, err)

			got := make([]suggestion, 0, len(items))
			for _, item := range items {
				var s suggestion
				require.NoError(t, json.Unmarshal(item, &s))
				got = append(got, s)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractJSONArray_KeepsWrongTypedElements(t *testing.T) {
	items, err := ExtractJSONArray(`[{"name":"a","frequency_value":3},{"name":"b","frequency_value":"6"}]`)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first, second suggestion
	require.NoError(t, json.Unmarshal(items[0], &first))
	assert.Equal(t, suggestion{Name: "a", Value: 3}, first)
	assert.Error(t, json.Unmarshal(items[1], &second))
}

func TestExtractJSONArray_Malformed(t *testing.T) {
	for _, text := range []string{"", "нет данных", "[{broken", "```json\n{oops\n```", "null"} {
		_, err := ExtractJSONArray(text)
		assert.ErrorIs(t, err, apperrors.ErrAIMalformedResponse, text)
	}
}

type fakeClient struct {
	calls int
}

func (f *fakeClient) GenerateText(context.Context, string) (string, error) {
	f.calls++
	return "ok", nil
}

func (f *fakeClient) Enabled() bool { return true }

func TestToggle(t *testing.T) {
	inner := &fakeClient{}
	on := true
	toggle := NewToggle(inner, func(context.Context) bool { return on })

	text, err := toggle.GenerateText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	on = false
	_, err = toggle.GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, apperrors.ErrAIUnavailable)
	assert.Equal(t, 1, inner.calls)
}

func TestDisabledClient(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), "", "", 0, 0, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, client.Enabled())

	_, err = client.GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, apperrors.ErrAIUnavailable)

	_, err = NewToggle(client, nil).GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, apperrors.ErrAIUnavailable)
}
