package email

import (
	"fmt"
	"html/template"
	"strings"
)

var tempPasswordTemplate = template.Must(template.New("tempPassword").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #2563eb;">캐치테이블 임시 비밀번호 발급</h1>
  <p>안녕하세요, <strong>{{.Username}}</strong>님!</p>
  <p>요청하신 임시 비밀번호를 발급해드립니다.</p>
  <div style="background-color: #f3f4f6; border-radius: 8px; padding: 16px; margin: 20px 0; text-align: center;">
    <span style="font-size: 24px; font-weight: bold; letter-spacing: 2px;">{{.TempPassword}}</span>
  </div>
  <h3>보안 안내</h3>
  <ul>
    <li>임시 비밀번호는 24시간 후 만료됩니다</li>
    <li>로그인 후 반드시 비밀번호를 변경해주세요</li>
    <li>본인이 요청하지 않았다면 즉시 고객센터로 연락해주세요</li>
  </ul>
  <p><a href="{{.LoginURL}}" style="color: #2563eb;">로그인 페이지로 이동</a></p>
</div>`))

type tempPasswordData struct {
	Username     string
	TempPassword string
	LoginURL     string
}

func renderTempPasswordHTML(username, tempPassword, appURL string) (string, error) {
	var buf strings.Builder
	err := tempPasswordTemplate.Execute(&buf, tempPasswordData{
		Username:     username,
		TempPassword: tempPassword,
		LoginURL:     appURL + "/login",
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderTempPasswordText(username, tempPassword, appURL string) string {
	return fmt.Sprintf(`캐치테이블 임시 비밀번호 발급

안녕하세요, %s님!
요청하신 임시 비밀번호를 발급해드립니다.

임시 비밀번호: %s

보안 안내:
- 임시 비밀번호는 24시간 후 만료됩니다
- 로그인 후 반드시 비밀번호를 변경해주세요
- 본인이 요청하지 않았다면 즉시 고객센터로 연락해주세요

로그인 페이지: %s/login`, username, tempPassword, appURL)
}
